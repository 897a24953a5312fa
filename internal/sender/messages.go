package sender

import (
	"fmt"
	"math/rand"
	"sync/atomic"
)

// RandomSource picks messages uniformly from a fixed list and appends a
// sequence number so repeated messages stay distinguishable.
type RandomSource struct {
	messages []string
	seq      atomic.Uint64
}

func NewRandomSource(messages []string) *RandomSource {
	if len(messages) == 0 {
		messages = []string{"remote log message"}
	}
	return &RandomSource{messages: messages}
}

func (rs *RandomSource) Next() string {
	n := rs.seq.Add(1)
	return fmt.Sprintf("%s #%d", rs.messages[rand.Intn(len(rs.messages))], n)
}

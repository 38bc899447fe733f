package kafka

import (
	"testing"
	"time"
)

func TestCloseFlushesAndStopsDrain(t *testing.T) {
	p := NewProducer([]string{"localhost:9092"}, "test.topic", 8)
	p.Start()
	p.Close()

	done := make(chan struct{})
	go func() {
		p.WaitClosed()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("drain goroutine did not exit after Close")
	}
}

/*
Package exchange moves ghost element state between partitions over
buffered channels, one mailbox per directed partition pair. Every
partition posts all of its outgoing buffers before any receive, so a
full exchange round cannot deadlock regardless of goroutine scheduling.
*/
package exchange

import "fmt"

type Exchanger struct {
	NP    int
	boxes [][]chan []float64 // boxes[from][to]
}

func NewExchanger(np int) (ex *Exchanger) {
	if np <= 0 {
		panic(fmt.Errorf("need a positive partition count, have %d", np))
	}
	ex = &Exchanger{
		NP:    np,
		boxes: make([][]chan []float64, np),
	}
	for from := 0; from < np; from++ {
		ex.boxes[from] = make([]chan []float64, np)
		for to := 0; to < np; to++ {
			ex.boxes[from][to] = make(chan []float64, 1)
		}
	}
	return
}

// Post deposits a buffer for the target partition. The caller gives up
// ownership of the slice until the matching Recv completes.
func (ex *Exchanger) Post(from, to int, buf []float64) {
	ex.boxes[from][to] <- buf
}

// Recv blocks until the buffer from the source partition arrives.
func (ex *Exchanger) Recv(from, to int) []float64 {
	return <-ex.boxes[from][to]
}

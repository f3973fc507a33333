package progress

import (
	"math"
	"sync"
	"testing"

	"pgregory.net/rapid"
)

func TestRecordTruncates(t *testing.T) {
	var a Aggregator
	cases := []struct {
		in   float64
		want int
	}{
		{0.0, 0},
		{0.37, 37},
		{0.999, 99},
		{1.0, 100},
		{-0.5, 0},
		{1.7, 100},
		{math.NaN(), 0},
	}
	for _, tc := range cases {
		a.Record(tc.in)
		if got := a.Percent(); got != tc.want {
			t.Errorf("Record(%v) -> %d, want %d", tc.in, got, tc.want)
		}
	}
}

func TestRecordKeepsLatestNotMax(t *testing.T) {
	var a Aggregator
	a.Record(0.8)
	a.Record(0.2)
	if got := a.Percent(); got != 20 {
		t.Fatalf("got %d, want latest value 20", got)
	}
}

func TestConcurrentRecordAndRead(t *testing.T) {
	var a Aggregator
	var wg sync.WaitGroup

	stop := make(chan struct{})
	readerDone := make(chan struct{})
	go func() {
		defer close(readerDone)
		for {
			select {
			case <-stop:
				return
			default:
			}
			if p := a.Percent(); p < 0 || p > 100 {
				t.Errorf("reader observed %d", p)
				return
			}
		}
	}()

	for _, f := range []float64{0.0, 0.37} {
		wg.Add(1)
		go func(f float64) {
			defer wg.Done()
			for i := 0; i < 1000; i++ {
				a.Record(f)
			}
		}(f)
	}
	wg.Wait()

	done := make(chan struct{})
	go func() {
		a.Record(1.0)
		close(done)
	}()
	<-done
	close(stop)
	<-readerDone

	if got := a.Percent(); got != 100 {
		t.Fatalf("final percent = %d, want 100", got)
	}
}

func TestPercentInRangeProperty(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		var a Aggregator
		f := rapid.Float64().Draw(rt, "fraction")
		a.Record(f)
		if p := a.Percent(); p < 0 || p > 100 {
			rt.Fatalf("Record(%v) stored %d", f, p)
		}
	})
}

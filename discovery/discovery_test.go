package discovery

import (
	"context"
	"fmt"
	"testing"
	"time"
)

func TestDiscover(t *testing.T) {
	n := 5
	fatal := make(chan error)
	for i := range n {
		go func() {
			self := Entry{Game: "g1", Replica: fmt.Sprintf("p%d", i), Address: fmt.Sprintf("localhost:%d", 8000+i)}
			discover, err := NewWithOptions(self, WithPortRange(9000, 9010), WithAttempts(3), WithInterval(500*time.Millisecond))
			if err != nil {
				fatal <- err
				return
			}
			defer discover.Close()
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			found, err := discover.Collect(ctx, n-1)
			if err != nil {
				fatal <- fmt.Errorf("node %d: %w", i, err)
				return
			}
			for j := range n {
				id := fmt.Sprintf("p%d", j)
				if j == i {
					if _, ok := found[id]; ok {
						fatal <- fmt.Errorf("node %d found itself", i)
						return
					}
					continue
				}
				e, ok := found[id]
				if !ok {
					fatal <- fmt.Errorf("node %d did not find entry %s", i, id)
					return
				}
				if e.Address != fmt.Sprintf("localhost:%d", 8000+j) {
					fatal <- fmt.Errorf("node %d got address %s for %s", i, e.Address, id)
					return
				}
			}
			// keep announcing until the slower nodes are done searching
			time.Sleep(2 * time.Second)
			fatal <- nil
		}()
	}
	for range n {
		if err := <-fatal; err != nil {
			t.Fatal(err)
		}
	}
}

func TestDiscoverIgnoresOtherGames(t *testing.T) {
	other, err := NewWithOptions(Entry{Game: "g2", Replica: "q0"}, WithPortRange(9020, 9022))
	if err != nil {
		t.Fatal(err)
	}
	defer other.Close()
	self, err := NewWithOptions(Entry{Game: "g1", Replica: "p0"}, WithPortRange(9020, 9022), WithAttempts(2), WithInterval(100*time.Millisecond))
	if err != nil {
		t.Fatal(err)
	}
	defer self.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	found, err := self.Collect(ctx, 1)
	if err == nil {
		t.Fatalf("expected nothing to be found, got %v", found)
	}
}

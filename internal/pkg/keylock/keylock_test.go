package keylock

import (
	"sync"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

func TestKeyLock(t *testing.T) {
	Convey("KeyLock 按 key 串行化", t, func() {
		kl := New()

		Convey("同一 key 的并发持有者互斥", func() {
			const workers = 8
			counter := 0

			var wg sync.WaitGroup
			wg.Add(workers)
			for i := 0; i < workers; i++ {
				go func() {
					defer wg.Done()
					kl.Lock("conv-1")
					defer kl.Unlock("conv-1")

					// 无保护的话这段读改写会丢更新
					v := counter
					time.Sleep(time.Millisecond)
					counter = v + 1
				}()
			}
			wg.Wait()

			So(counter, ShouldEqual, workers)
		})

		Convey("不同 key 互不阻塞", func() {
			kl.Lock("conv-a")

			done := make(chan struct{})
			go func() {
				kl.Lock("conv-b")
				kl.Unlock("conv-b")
				close(done)
			}()

			select {
			case <-done:
				// conv-b 没有被 conv-a 挡住
			case <-time.After(time.Second):
				t.Fatal("lock on a different key should not block")
			}

			kl.Unlock("conv-a")
		})

		Convey("释放后可重新获取", func() {
			kl.Lock("conv-x")
			kl.Unlock("conv-x")
			kl.Lock("conv-x")
			kl.Unlock("conv-x")
		})
	})
}

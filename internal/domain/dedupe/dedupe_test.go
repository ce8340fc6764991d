package dedupe_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	dedupe "github.com/okian/jobdb/internal/domain/dedupe"
	. "github.com/smartystreets/goconvey/convey"
)

func TestInMemoryDeduper(t *testing.T) {
	ctx := context.Background()

	Convey("Given a new InMemoryDeduper", t, func() {
		d := dedupe.NewInMemoryDeduper()

		Convey("When a key is claimed for the first time", func() {
			_, seen := d.Claim(ctx, "key-1")

			Convey("Then it is new and recorded", func() {
				So(seen, ShouldBeFalse)
				So(d.Size(), ShouldEqual, 1)
			})

			Convey("And claimed again before completion", func() {
				resp, seen := d.Claim(ctx, "key-1")

				Convey("Then it is reported as pending", func() {
					So(seen, ShouldBeTrue)
					So(resp.Pending(), ShouldBeTrue)
					So(d.Size(), ShouldEqual, 1)
				})
			})

			Convey("And completed", func() {
				body := []byte(`{"ok":true}`)
				d.Complete(ctx, "key-1", dedupe.Response{Status: 201, Body: body})
				body[0] = 'X'

				Convey("Then a later claim replays a copy of the response", func() {
					resp, seen := d.Claim(ctx, "key-1")
					So(seen, ShouldBeTrue)
					So(resp.Pending(), ShouldBeFalse)
					So(resp.Status, ShouldEqual, 201)
					So(string(resp.Body), ShouldEqual, `{"ok":true}`)
				})
			})

			Convey("And released", func() {
				d.Release(ctx, "key-1")

				Convey("Then it can be claimed again", func() {
					_, seen := d.Claim(ctx, "key-1")
					So(seen, ShouldBeFalse)
					So(d.Size(), ShouldEqual, 1)
				})
			})
		})

		Convey("When completing or releasing unknown keys", func() {
			d.Complete(ctx, "missing", dedupe.Response{Status: 200})
			d.Release(ctx, "missing")

			Convey("Then nothing is recorded", func() {
				So(d.Size(), ShouldEqual, 0)
			})
		})
	})

	Convey("Given a bounded deduper", t, func() {
		d := dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(3))
		for i := 0; i < 5; i++ {
			d.Claim(ctx, fmt.Sprintf("key-%d", i))
		}

		Convey("Then the oldest keys are evicted", func() {
			So(d.Size(), ShouldEqual, 3)
			_, seen := d.Claim(ctx, "key-4")
			So(seen, ShouldBeTrue)
			_, seen = d.Claim(ctx, "key-0")
			So(seen, ShouldBeFalse)
		})
	})

	Convey("Given an unbounded deduper", t, func() {
		d := dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(0))
		for i := 0; i < 1000; i++ {
			d.Claim(ctx, fmt.Sprintf("key-%d", i))
		}
		So(d.Size(), ShouldEqual, 1000)
	})

	Convey("Given concurrent claims of the same key", t, func() {
		d := dedupe.NewInMemoryDeduper()
		var (
			wg    sync.WaitGroup
			mu    sync.Mutex
			fresh int
		)
		for i := 0; i < 50; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if _, seen := d.Claim(ctx, "shared"); !seen {
					mu.Lock()
					fresh++
					mu.Unlock()
				}
			}()
		}
		wg.Wait()

		Convey("Then exactly one caller wins", func() {
			So(fresh, ShouldEqual, 1)
			So(d.Size(), ShouldEqual, 1)
		})
	})
}

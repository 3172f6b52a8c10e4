package catalog

import (
	"context"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/pricewise/internal/domain/model"
)

func TestSimulatedSource(t *testing.T) {
	Convey("Given the default simulated source", t, func() {
		src := NewSimulatedSource()

		Convey("When fetching any query", func() {
			a, err := src.Fetch(context.Background(), "samsung")
			So(err, ShouldBeNil)
			b, err := src.Fetch(context.Background(), "something else")
			So(err, ShouldBeNil)

			Convey("Then the same two valid listings come back", func() {
				So(len(a), ShouldEqual, 2)
				So(a, ShouldResemble, b)
				for _, l := range a {
					So(l.Validate(), ShouldBeNil)
				}
				So(a[0].ShopName, ShouldEqual, "Jumia")
				So(a[1].ShopName, ShouldEqual, "Kill Mall")
			})

			Convey("Then callers cannot mutate the source", func() {
				a[0].ProductPrice = 1
				again, _ := src.Fetch(context.Background(), "")
				So(again[0].ProductPrice, ShouldEqual, 30098)
			})
		})

		Convey("When the context is cancelled", func() {
			ctx, cancel := context.WithCancel(context.Background())
			cancel()
			_, err := src.Fetch(ctx, "q")
			So(err, ShouldEqual, context.Canceled)
		})
	})

	Convey("Given a source with custom listings", t, func() {
		src := NewSimulatedSource(model.Listing{ProductName: "X", ShopName: "Y"})
		out, err := src.Fetch(context.Background(), "")
		So(err, ShouldBeNil)
		So(len(out), ShouldEqual, 1)
	})
}

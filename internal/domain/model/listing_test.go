package model_test

import (
	"math"
	"testing"

	"github.com/okian/pricewise/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func validListing() model.Listing {
	return model.Listing{
		ProductName:   "Samsung A51",
		ShopName:      "Jumia",
		ProductPrice:  30098,
		DeliveryCost:  200,
		ProductRating: 4.7,
		NumRatings:    10,
		PaymentMode:   model.PayAfterDelivery,
		ProductURL:    "https://jumia.com/samsung-a51",
	}
}

func TestListing_Validate(t *testing.T) {
	Convey("Given a listing", t, func() {
		l := validListing()

		Convey("When all fields are valid", func() {
			So(l.Validate(), ShouldBeNil)
		})

		Convey("When delivery cost is zero", func() {
			l.DeliveryCost = 0
			Convey("Then validation still passes", func() {
				So(l.Validate(), ShouldBeNil)
			})
		})

		cases := []struct {
			name   string
			mutate func(*model.Listing)
			want   string
		}{
			{"product name is blank", func(l *model.Listing) { l.ProductName = "  " }, "missing product_name"},
			{"shop name is missing", func(l *model.Listing) { l.ShopName = "" }, "missing shop_name"},
			{"price is zero", func(l *model.Listing) { l.ProductPrice = 0 }, "product_price"},
			{"price is NaN", func(l *model.Listing) { l.ProductPrice = math.NaN() }, "product_price"},
			{"delivery cost is negative", func(l *model.Listing) { l.DeliveryCost = -1 }, "delivery_cost"},
			{"rating is above five", func(l *model.Listing) { l.ProductRating = 5.1 }, "product_rating"},
			{"rating is negative", func(l *model.Listing) { l.ProductRating = -0.1 }, "product_rating"},
			{"num ratings is negative", func(l *model.Listing) { l.NumRatings = -3 }, "num_ratings"},
			{"payment mode is unknown", func(l *model.Listing) { l.PaymentMode = "crypto" }, "payment_mode"},
		}
		for _, tc := range cases {
			tc := tc
			Convey("When "+tc.name, func() {
				tc.mutate(&l)
				err := l.Validate()
				So(err, ShouldNotBeNil)
				So(err.Error(), ShouldContainSubstring, tc.want)
			})
		}
	})
}

func TestPaymentMode(t *testing.T) {
	Convey("Given payment mode strings", t, func() {
		Convey("When parsing wire values and labels", func() {
			m, err := model.ParsePaymentMode("Pay before delivery")
			So(err, ShouldBeNil)
			So(m, ShouldEqual, model.PayBeforeDelivery)

			m, err = model.ParsePaymentMode(" pay_after ")
			So(err, ShouldBeNil)
			So(m, ShouldEqual, model.PayAfterDelivery)
			So(m.Label(), ShouldEqual, "pay_after")
		})

		Convey("When parsing an unknown value", func() {
			_, err := model.ParsePaymentMode("barter")
			So(err, ShouldNotBeNil)
			So(model.PaymentMode("barter").Label(), ShouldEqual, "unknown")
		})
	})
}

func TestListing_Key(t *testing.T) {
	Convey("The catalog key is product name plus shop", t, func() {
		k := validListing().Key()
		So(k.ProductName, ShouldEqual, "Samsung A51")
		So(k.ShopName, ShouldEqual, "Jumia")
		So(k.String(), ShouldEqual, "Samsung A51@Jumia")
	})
}

package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	. "github.com/smartystreets/goconvey/convey"
)

func TestHasher(t *testing.T) {
	Convey("Given a bcrypt hasher", t, func() {
		h := NewHasher(bcrypt.MinCost)

		Convey("When a password is hashed", func() {
			hash, err := h.Hash("s3cret!")
			So(err, ShouldBeNil)

			Convey("Then the hash is not the password", func() {
				So(hash, ShouldNotEqual, "s3cret!")
			})

			Convey("Then the right password verifies", func() {
				So(h.Verify(hash, "s3cret!"), ShouldBeNil)
			})

			Convey("Then a wrong password is a mismatch", func() {
				So(errors.Is(h.Verify(hash, "wrong"), ErrMismatch), ShouldBeTrue)
			})
		})

		Convey("When the stored hash is garbage", func() {
			err := h.Verify("not-a-hash", "x")

			Convey("Then an error other than mismatch is returned", func() {
				So(err, ShouldNotBeNil)
				So(errors.Is(err, ErrMismatch), ShouldBeFalse)
			})
		})

		Convey("When the cost is out of range", func() {
			So(NewHasher(99).cost, ShouldEqual, bcrypt.DefaultCost)
		})
	})
}

func TestTokens(t *testing.T) {
	Convey("Given a token issuer", t, func() {
		now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
		clock := func() time.Time { return now }
		tokens, err := NewTokens("secret", WithTTL(time.Hour), WithClock(clock))
		So(err, ShouldBeNil)

		Convey("When a token is issued and verified", func() {
			tok, err := tokens.Issue(42)
			So(err, ShouldBeNil)
			uid, err := tokens.Verify(tok)

			Convey("Then the subject round-trips", func() {
				So(err, ShouldBeNil)
				So(uid, ShouldEqual, 42)
			})
		})

		Convey("When the token has expired", func() {
			tok, err := tokens.Issue(1)
			So(err, ShouldBeNil)
			now = now.Add(2 * time.Hour)
			_, err = tokens.Verify(tok)

			Convey("Then it is rejected", func() {
				So(errors.Is(err, ErrInvalidToken), ShouldBeTrue)
			})
		})

		Convey("When the token was signed with another secret", func() {
			other, err := NewTokens("other", WithClock(clock))
			So(err, ShouldBeNil)
			tok, err := other.Issue(1)
			So(err, ShouldBeNil)
			_, err = tokens.Verify(tok)
			So(errors.Is(err, ErrInvalidToken), ShouldBeTrue)
		})

		Convey("When the token uses the none algorithm", func() {
			tok, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{
				Issuer:  "pricewise",
				Subject: "1",
			}).SignedString(jwt.UnsafeAllowNoneSignatureType)
			So(err, ShouldBeNil)
			_, err = tokens.Verify(tok)
			So(errors.Is(err, ErrInvalidToken), ShouldBeTrue)
		})

		Convey("When the token is garbage", func() {
			_, err := tokens.Verify("abc.def.ghi")
			So(errors.Is(err, ErrInvalidToken), ShouldBeTrue)
		})
	})

	Convey("Given an empty secret", t, func() {
		_, err := NewTokens("  ")
		So(errors.Is(err, ErrEmptySecret), ShouldBeTrue)
	})
}

func TestBearerToken(t *testing.T) {
	Convey("Given authorization headers", t, func() {
		tok, err := BearerToken("Bearer abc")
		So(err, ShouldBeNil)
		So(tok, ShouldEqual, "abc")

		tok, err = BearerToken("bearer   xyz ")
		So(err, ShouldBeNil)
		So(tok, ShouldEqual, "xyz")

		_, err = BearerToken("")
		So(errors.Is(err, ErrMissingBearer), ShouldBeTrue)

		_, err = BearerToken("Basic dXNlcjpwYXNz")
		So(errors.Is(err, ErrMalformedHeader), ShouldBeTrue)

		_, err = BearerToken("Bearer")
		So(errors.Is(err, ErrMalformedHeader), ShouldBeTrue)
	})
}

func TestGenerateCode(t *testing.T) {
	Convey("Given a code length of six", t, func() {
		code, err := GenerateCode(6)

		Convey("Then six digits are returned", func() {
			So(err, ShouldBeNil)
			So(code, ShouldHaveLength, 6)
			for _, c := range code {
				So(c >= '0' && c <= '9', ShouldBeTrue)
			}
		})

		Convey("And a non-positive length fails", func() {
			_, err := GenerateCode(0)
			So(err, ShouldNotBeNil)
		})
	})
}

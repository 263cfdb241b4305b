package subscriptions

import (
	"testing"

	"github.com/matryer/is"
)

func TestCost(t *testing.T) {
	is := is.New(t)
	p := testPricing()

	is.Equal(p.Cost(Form{Price: "mapit-100k-v"}), 100.0)
	is.Equal(p.Cost(Form{Price: "MAPIT-0K-V"}), 300.0)
	is.Equal(p.Cost(Form{}), 20.0)                 // no plan chosen
	is.Equal(p.Cost(Form{Price: "unknown"}), 20.0) // unknown plan
}

func TestCharitableCost(t *testing.T) {
	is := is.New(t)
	p := testPricing()

	is.Equal(p.Cost(Form{Price: "mapit-10k-v", CharitableTick: true, Charitable: Charity}), 0.0)
	is.Equal(p.Cost(Form{Price: "mapit-100k-v", CharitableTick: true, Charitable: Individual}), 50.0)
	is.Equal(p.Cost(Form{Price: "mapit-100k-v", CharitableTick: true, Charitable: Neither}), 100.0)
	is.Equal(p.Cost(Form{Price: "mapit-100k-v", Charitable: Charity}), 100.0) // tick not set
}

func TestNeedsPayment(t *testing.T) {
	is := is.New(t)
	p := testPricing()

	is.True(p.NeedsPayment(Form{Price: "mapit-10k-v"}, false))
	is.True(!p.NeedsPayment(Form{Price: "mapit-10k-v"}, true))
	is.True(!p.NeedsPayment(Form{Price: "mapit-10k-v", CharitableTick: true, Charitable: Charity}, false))
}

func TestValidateRequiredFields(t *testing.T) {
	is := is.New(t)
	p := testPricing()

	errs := p.Validate(Form{}, false)
	is.Equal(fields(errs), []string{"email", "password", "passwordConfirm", "price"})
}

func TestValidateEmailAndPasswords(t *testing.T) {
	is := is.New(t)
	p := testPricing()

	f := validForm()
	f.Email = "not-an-email"
	f.PasswordConfirm = "other"

	errs := p.Validate(f, true)
	is.Equal(fields(errs), []string{"email", "passwordConfirm"})
	is.Equal(errs[1].Message, "The passwords do not match.")
}

func TestValidateCharitable(t *testing.T) {
	is := is.New(t)
	p := testPricing()

	f := validForm()
	f.CharitableTick = true
	is.Equal(fields(p.Validate(f, true)), []string{"charitable"})

	f.Charitable = Charity
	is.Equal(fields(p.Validate(f, true)), []string{"charityNumber"})

	f.Charitable = Individual
	is.Equal(fields(p.Validate(f, true)), []string{"description"})

	f.Description = "Local history society"
	is.Equal(len(p.Validate(f, true)), 0)
}

func TestValidateTerms(t *testing.T) {
	is := is.New(t)
	p := testPricing()

	f := validForm()
	accepted := false
	f.TermsAccepted = &accepted
	is.Equal(fields(p.Validate(f, true)), []string{"termsAccepted"})

	accepted = true
	is.Equal(len(p.Validate(f, true)), 0)
}

func TestValidateNameWhenPaying(t *testing.T) {
	is := is.New(t)
	p := testPricing()

	f := validForm()
	f.Name = ""
	is.Equal(fields(p.Validate(f, false)), []string{"name"})
	is.Equal(len(p.Validate(f, true)), 0)

	q := p.Quote(f, false)
	is.Equal(q.Cost, 20.0)
	is.True(q.NeedsPayment)
}

func testPricing() Pricing {
	return NewPricing(20, map[string]float64{
		"mapit-10k-v":  20,
		"mapit-100k-v": 100,
		"mapit-0k-v":   300,
	})
}

func validForm() Form {
	return Form{
		Email:           "someone@example.org",
		Password:        "secret",
		PasswordConfirm: "secret",
		Price:           "mapit-10k-v",
		Name:            "Some One",
	}
}

func fields(errs []FieldError) []string {
	f := make([]string, 0, len(errs))
	for _, e := range errs {
		f = append(f, e.Field)
	}
	return f
}

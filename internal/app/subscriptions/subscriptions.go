package subscriptions

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

const (
	Charity    string = "c"
	Individual string = "i"
	Neither    string = "n"
)

type Pricing struct {
	MinimumPrice float64            `json:"minimumPrice"`
	Plans        map[string]float64 `json:"plans"`
}

// Form holds the fields of the signup form that decide what a subscription
// costs and whether it can be submitted.
type Form struct {
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required"`
	PasswordConfirm string `json:"passwordConfirm" validate:"required,eqfield=Password"`
	Price           string `json:"price" validate:"required"`
	CharitableTick  bool   `json:"charitableTick"`
	Charitable      string `json:"charitable"`
	CharityNumber   string `json:"charityNumber" validate:"required_if=CharitableTick true Charitable c"`
	Description     string `json:"description" validate:"required_if=CharitableTick true Charitable i"`
	Name            string `json:"name"`
	TermsAccepted   *bool  `json:"termsAccepted,omitempty"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})

	return v
}

var messages = map[string]string{
	"required":    "This field is required.",
	"required_if": "This field is required.",
	"email":       "Please enter a valid email address.",
	"eqfield":     "The passwords do not match.",
}

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type Quote struct {
	Cost         float64      `json:"cost"`
	NeedsPayment bool         `json:"needsPayment"`
	Errors       []FieldError `json:"errors"`
}

func NewPricing(minimum float64, plans map[string]float64) Pricing {
	p := Pricing{
		MinimumPrice: minimum,
		Plans:        make(map[string]float64, len(plans)),
	}

	for k, v := range plans {
		p.Plans[strings.ToLower(k)] = v
	}

	return p
}

// Cost is the price of the chosen plan, or the minimum price when no known plan
// is chosen. Charities and individuals pay half, or nothing on the cheapest plan.
func (p Pricing) Cost(f Form) float64 {
	cost, ok := p.Plans[strings.ToLower(f.Price)]
	if !ok || cost == 0 {
		cost = p.MinimumPrice
	}

	if f.CharitableTick && (f.Charitable == Charity || f.Charitable == Individual) {
		if cost == p.MinimumPrice {
			return 0
		}
		return cost / 2
	}

	return cost
}

func (p Pricing) NeedsPayment(f Form, hasPaymentData bool) bool {
	return p.Cost(f) != 0 && !hasPaymentData
}

func (p Pricing) Validate(f Form, hasPaymentData bool) []FieldError {
	errs := make([]FieldError, 0)

	var verrs validator.ValidationErrors
	if err := validate.Struct(f); errors.As(err, &verrs) {
		for _, fe := range verrs {
			msg, ok := messages[fe.Tag()]
			if !ok {
				msg = "Invalid value."
			}
			if fe.Field() == "price" {
				msg = "Please choose a plan."
			}
			errs = append(errs, FieldError{Field: fe.Field(), Message: msg})
		}
	}

	if f.CharitableTick {
		switch f.Charitable {
		case Charity, Individual, Neither:
		default:
			errs = append(errs, FieldError{Field: "charitable", Message: "Please choose an option."})
		}
	}

	if f.TermsAccepted != nil && !*f.TermsAccepted {
		errs = append(errs, FieldError{Field: "termsAccepted", Message: "Please accept the terms and conditions."})
	}

	if len(errs) == 0 && p.NeedsPayment(f, hasPaymentData) && strings.TrimSpace(f.Name) == "" {
		errs = append(errs, FieldError{Field: "name", Message: "This field is required."})
	}

	return errs
}

func (p Pricing) Quote(f Form, hasPaymentData bool) Quote {
	return Quote{
		Cost:         p.Cost(f),
		NeedsPayment: p.NeedsPayment(f, hasPaymentData),
		Errors:       p.Validate(f, hasPaymentData),
	}
}

package notify

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Abhinavraj53/Pujnam-Store/pkg/models"
)

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

const (
	defaultStoreName = "Pujnam Store"
	defaultTagline   = "AAPKI AASTHA KA SAARTHI"
	codeLifetime     = "10 minutes"
)

// ist is the store's display zone for order dates.
var ist = time.FixedZone("IST", 5*60*60+30*60)

// Message is one rendered email.
type Message struct {
	To      string
	Subject string
	HTML    string
}

type storeView struct {
	Name    string
	Tagline string
	Email   string
	Phone   string
	Address string
}

func storeFrom(s models.Settings) storeView {
	v := storeView{
		Name:    s.StoreName,
		Tagline: s.Tagline,
		Email:   s.StoreEmail,
		Phone:   s.StorePhone,
		Address: s.StoreAddress,
	}
	if v.Name == "" {
		v.Name = defaultStoreName
	}
	if v.Tagline == "" {
		v.Tagline = defaultTagline
	}
	return v
}

type codeView struct {
	Store     storeView
	Year      int
	Customer  string
	Code      string
	ExpiresIn string
}

type orderLineView struct {
	Name     string
	Quantity int
	Price    string
	Total    string
}

type orderView struct {
	Store         storeView
	Year          int
	Customer      string
	OrderID       string
	Date          string
	Status        string
	PaymentMethod string
	PaymentStatus string
	Items         []orderLineView
	Subtotal      string
	Discount      string
	CouponCode    string
	Shipping      string
	Tax           string
	Total         string
	Address       []string
}

func rupees(d decimal.Decimal) string {
	return "₹" + d.StringFixed(2)
}

func amount(v float64) string {
	return rupees(decimal.NewFromFloat(v))
}

func customerName(name string) string {
	if strings.TrimSpace(name) == "" {
		return "Valued Customer"
	}
	return name
}

func render(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("render %s: %w", name, err)
	}
	return buf.String(), nil
}

func addressLines(a models.ShippingAddress) []string {
	var cityLine []string
	for _, part := range []string{a.City, a.State} {
		if part != "" {
			cityLine = append(cityLine, part)
		}
	}
	city := strings.Join(cityLine, ", ")
	if a.ZipCode != "" {
		city = strings.TrimSpace(city + " - " + a.ZipCode)
	}

	var lines []string
	for _, l := range []string{a.Name, a.Street, city, a.Phone} {
		if l = strings.TrimSpace(l); l != "" {
			lines = append(lines, l)
		}
	}
	return lines
}

// OrderConfirmation renders the confirmation sent after checkout.
func OrderConfirmation(o models.Order, s models.Settings, email, name string, now time.Time) (Message, error) {
	store := storeFrom(s)
	v := orderView{
		Store:         store,
		Year:          now.Year(),
		Customer:      customerName(name),
		OrderID:       o.ShortID(),
		Date:          o.CreatedAt.In(ist).Format("2 January 2006 at 3:04 PM"),
		Status:        strings.ToUpper(string(o.OrderStatus)),
		PaymentMethod: strings.ToUpper(string(o.PaymentMethod)),
		PaymentStatus: strings.ToUpper(string(o.PaymentStatus)),
		Items:         make([]orderLineView, 0, len(o.Items)),
		Subtotal:      amount(o.Subtotal),
		CouponCode:    o.CouponCode,
		Shipping:      amount(o.ShippingCost),
		Tax:           amount(o.Tax),
		Total:         amount(o.Total),
		Address:       addressLines(o.ShippingAddress),
	}
	if o.CouponDiscount > 0 {
		v.Discount = amount(o.CouponDiscount)
	}
	for _, it := range o.Items {
		price := decimal.NewFromFloat(it.Price)
		v.Items = append(v.Items, orderLineView{
			Name:     it.Name,
			Quantity: it.Quantity,
			Price:    rupees(price),
			Total:    rupees(price.Mul(decimal.NewFromInt(int64(it.Quantity)))),
		})
	}

	html, err := render("order_confirmation.html", v)
	if err != nil {
		return Message{}, err
	}
	return Message{
		To:      email,
		Subject: fmt.Sprintf("Order Confirmation - Order #%s - %s", v.OrderID, store.Name),
		HTML:    html,
	}, nil
}

func codeMessage(tmpl, subject, email, name, code string, s models.Settings, now time.Time) (Message, error) {
	v := codeView{
		Store:     storeFrom(s),
		Year:      now.Year(),
		Customer:  customerName(name),
		Code:      code,
		ExpiresIn: codeLifetime,
	}
	html, err := render(tmpl, v)
	if err != nil {
		return Message{}, err
	}
	return Message{To: email, Subject: fmt.Sprintf(subject, v.Store.Name), HTML: html}, nil
}

func VerificationCode(email, code string, s models.Settings, now time.Time) (Message, error) {
	return codeMessage("verification.html", "Email Verification Code - %s", email, "", code, s, now)
}

func PasswordResetCode(email, code string, s models.Settings, now time.Time) (Message, error) {
	return codeMessage("password_reset.html", "Password Reset OTP - %s", email, "", code, s, now)
}

func PasswordChangeCode(email, name, code string, s models.Settings, now time.Time) (Message, error) {
	return codeMessage("password_change.html", "Password Change OTP - %s", email, name, code, s, now)
}

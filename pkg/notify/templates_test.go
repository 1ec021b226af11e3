package notify

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Abhinavraj53/Pujnam-Store/pkg/models"
)

var now = time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

func placedOrder(t *testing.T) models.Order {
	t.Helper()
	id, err := primitive.ObjectIDFromHex("65f1a2b3c4d5e6f708192a3b")
	require.NoError(t, err)
	return models.Order{
		ID: id,
		Items: []models.OrderItem{
			{Name: "Brass Diya", Price: 120.5, Quantity: 2},
			{Name: "Incense", Price: 50, Quantity: 1},
		},
		ShippingAddress: models.ShippingAddress{
			Name: "Asha", Street: "12 Temple Road", City: "Varanasi", State: "UP", ZipCode: "221001", Phone: "9876543210",
		},
		PaymentMethod: models.PaymentCOD,
		PaymentStatus: models.PaymentPending,
		OrderStatus:   models.OrderPending,
		Subtotal:      291,
		ShippingCost:  50,
		Tax:           52,
		Total:         393,
		CreatedAt:     now,
	}
}

func TestOrderConfirmation(t *testing.T) {
	msg, err := OrderConfirmation(placedOrder(t), models.DefaultSettings(), "asha@example.com", "Asha", now)
	require.NoError(t, err)

	assert.Equal(t, "asha@example.com", msg.To)
	assert.Equal(t, "Order Confirmation - Order #08192a3b - Pujnam Store", msg.Subject)
	for _, want := range []string{
		"Dear Asha,",
		"#08192a3b",
		"1 March 2026 at 3:30 PM",
		"PENDING",
		"COD",
		"₹120.50",
		"₹241.00",
		"₹291.00",
		"₹393.00",
		"Varanasi, UP - 221001",
		"info@pujnamstore.com",
		"&copy; 2026 Pujnam Store",
	} {
		assert.Contains(t, msg.HTML, want)
	}
	assert.NotContains(t, msg.HTML, "Coupon Discount")
}

func TestOrderConfirmationDiscountAndDefaults(t *testing.T) {
	o := placedOrder(t)
	o.CouponCode = "DIWALI50"
	o.CouponDiscount = 50

	msg, err := OrderConfirmation(o, models.Settings{}, "guest@example.com", " ", now)
	require.NoError(t, err)
	assert.Contains(t, msg.HTML, "Coupon Discount (DIWALI50):")
	assert.Contains(t, msg.HTML, "-₹50.00")
	assert.Contains(t, msg.HTML, "Dear Valued Customer,")
	assert.Contains(t, msg.HTML, "AAPKI AASTHA KA SAARTHI")
	assert.NotContains(t, msg.HTML, "Contact us:")
	assert.Equal(t, "Order Confirmation - Order #08192a3b - Pujnam Store", msg.Subject)
}

func TestCodeMessages(t *testing.T) {
	s := models.DefaultSettings()
	s.StoreName = "Pujnam Kashi"

	verify, err := VerificationCode("a@example.com", "123456", models.DefaultSettings(), now)
	require.NoError(t, err)
	assert.Equal(t, "Email Verification Code - Pujnam Store", verify.Subject)
	assert.Contains(t, verify.HTML, "123456")
	assert.Contains(t, verify.HTML, "10 minutes")

	reset, err := PasswordResetCode("a@example.com", "654321", s, now)
	require.NoError(t, err)
	assert.Equal(t, "Password Reset OTP - Pujnam Kashi", reset.Subject)
	assert.Contains(t, reset.HTML, "654321")

	change, err := PasswordChangeCode("a@example.com", "Asha", "111222", s, now)
	require.NoError(t, err)
	assert.Equal(t, "Password Change OTP - Pujnam Kashi", change.Subject)
	assert.Contains(t, change.HTML, "Asha")
	assert.Contains(t, change.HTML, "111222")
}

func TestAddressLinesSkipsBlanks(t *testing.T) {
	assert.Equal(t, []string{"Asha", "Varanasi"}, addressLines(models.ShippingAddress{Name: "Asha", City: "Varanasi"}))
	assert.Empty(t, addressLines(models.ShippingAddress{}))
}

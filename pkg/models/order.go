package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type OrderStatus string

const (
	OrderPending    OrderStatus = "pending"
	OrderConfirmed  OrderStatus = "confirmed"
	OrderProcessing OrderStatus = "processing"
	OrderShipped    OrderStatus = "shipped"
	OrderDelivered  OrderStatus = "delivered"
	OrderCancelled  OrderStatus = "cancelled"
)

var orderStatuses = map[OrderStatus]struct{}{
	OrderPending:    {},
	OrderConfirmed:  {},
	OrderProcessing: {},
	OrderShipped:    {},
	OrderDelivered:  {},
	OrderCancelled:  {},
}

func (s OrderStatus) Valid() bool {
	_, ok := orderStatuses[s]
	return ok
}

// CancellableStatuses are the only states a customer may cancel from.
var CancellableStatuses = []OrderStatus{OrderPending, OrderConfirmed}

type PaymentMethod string

const (
	PaymentCOD    PaymentMethod = "cod"
	PaymentOnline PaymentMethod = "online"
	PaymentUPI    PaymentMethod = "upi"
)

func (m PaymentMethod) Valid() bool {
	return m == PaymentCOD || m == PaymentOnline || m == PaymentUPI
}

type PaymentStatus string

const (
	PaymentPending PaymentStatus = "pending"
	PaymentPaid    PaymentStatus = "paid"
	PaymentFailed  PaymentStatus = "failed"
)

func (s PaymentStatus) Valid() bool {
	return s == PaymentPending || s == PaymentPaid || s == PaymentFailed
}

// OrderItem is a snapshot of the product taken when the order was placed.
// Price is copied so later catalog edits never change historical orders.
type OrderItem struct {
	Product  primitive.ObjectID `bson:"product" json:"product"`
	Name     string             `bson:"name" json:"name"`
	Price    float64            `bson:"price" json:"price"`
	Quantity int                `bson:"quantity" json:"quantity"`
	// ProductInfo is the current catalog entry, resolved on read. It is nil
	// once the product has been deleted.
	ProductInfo *ProductRef `bson:"-" json:"productInfo,omitempty"`
}

func (i OrderItem) LineTotal() float64 {
	return i.Price * float64(i.Quantity)
}

type ShippingAddress struct {
	Name    string `bson:"name" json:"name"`
	Street  string `bson:"street" json:"street"`
	City    string `bson:"city" json:"city"`
	State   string `bson:"state" json:"state"`
	ZipCode string `bson:"zipCode" json:"zipCode"`
	Phone   string `bson:"phone" json:"phone"`
	Email   string `bson:"email" json:"email"`
}

type Order struct {
	ID              primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	User            *primitive.ObjectID `bson:"user,omitempty" json:"user,omitempty"`
	Items           []OrderItem         `bson:"items" json:"items"`
	ShippingAddress ShippingAddress     `bson:"shippingAddress" json:"shippingAddress"`
	PaymentMethod   PaymentMethod       `bson:"paymentMethod" json:"paymentMethod"`
	PaymentStatus   PaymentStatus       `bson:"paymentStatus" json:"paymentStatus"`
	OrderStatus     OrderStatus         `bson:"orderStatus" json:"orderStatus"`
	Subtotal        float64             `bson:"subtotal" json:"subtotal"`
	ShippingCost    float64             `bson:"shippingCost" json:"shippingCost"`
	Tax             float64             `bson:"tax" json:"tax"`
	Total           float64             `bson:"total" json:"total"`
	CouponCode      string              `bson:"couponCode,omitempty" json:"couponCode,omitempty"`
	CouponDiscount  float64             `bson:"couponDiscount" json:"couponDiscount"`
	Notes           string              `bson:"notes,omitempty" json:"notes,omitempty"`
	CreatedAt       time.Time           `bson:"createdAt" json:"createdAt"`
	UpdatedAt       time.Time           `bson:"updatedAt" json:"updatedAt"`
}

func (Order) CollectionName() string {
	return "orders"
}

func (o *Order) Cancellable() bool {
	for _, s := range CancellableStatuses {
		if o.OrderStatus == s {
			return true
		}
	}
	return false
}

// ShortID is the last eight hex digits of the id, used in customer mail.
func (o *Order) ShortID() string {
	hex := o.ID.Hex()
	return hex[len(hex)-8:]
}

func (o *Order) IsGuest() bool {
	return o.User == nil
}

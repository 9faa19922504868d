package domain

// Money is an amount in minor units (cents).
type Money = int64

const Currency = "USD"

type Category struct {
	ID   string `db:"id" json:"id"`
	Name string `db:"name" json:"name"`
}

// Product is the sellable view of a catalog entry: reference data joined with its active price.
type Product struct {
	ID          string `db:"id" json:"id"`
	Name        string `db:"name" json:"name"`
	Description string `db:"description" json:"description"`
	ImageURL    string `db:"image_url" json:"imageUrl"`
	CategoryID  string `db:"category_id" json:"categoryId"`
	Featured    bool   `db:"featured" json:"featured"`
	Price       Money  `db:"-" json:"price"`
	Currency    string `db:"-" json:"currency"`
}

type PriceItem struct {
	ID          string `db:"id" json:"id"`
	ProductID   string `db:"product_id" json:"productId"`
	Price       Money  `db:"price" json:"price"`
	Currency    string `db:"currency" json:"currency"`
	IsActive    bool   `db:"is_active" json:"isActive"`
	EffectiveAt string `db:"effective_at" json:"effectiveAt"`
}

type CartStatus string

const (
	CartActive     CartStatus = "active"
	CartCheckedOut CartStatus = "checked_out"
)

type CartItem struct {
	ProductID string `db:"product_id" json:"productId"`
	Name      string `db:"name" json:"name"`
	Price     Money  `db:"price" json:"price"`
	Quantity  int    `db:"quantity" json:"quantity"`
	ItemTotal Money  `db:"item_total" json:"itemTotal"`
}

type Cart struct {
	ID            string     `db:"id" json:"id"`
	UserID        string     `db:"user_id" json:"userId"`
	Items         []CartItem `db:"-" json:"items"`
	Subtotal      Money      `db:"subtotal" json:"subtotal"`
	Discount      Money      `db:"discount" json:"discount"`
	Total         Money      `db:"total" json:"total"`
	Status        CartStatus `db:"status" json:"status"`
	LinkedOrderID string     `db:"linked_order_id" json:"linkedOrderId,omitempty"`
	Version       int        `db:"version" json:"-"`
	CreatedAt     string     `db:"created_at" json:"createdAt"`
	UpdatedAt     string     `db:"updated_at" json:"updatedAt"`
}

type UserState struct {
	UserID        string `db:"user_id"`
	CurrentCartID string `db:"current_cart_id"`
	UpdatedAt     string `db:"updated_at"`
}

type PaymentMethod string

const (
	PaymentCard PaymentMethod = "card"
	PaymentCash PaymentMethod = "cash"
)

type OrderStatus string

const (
	OrderSuccess OrderStatus = "success"
	OrderFailed  OrderStatus = "failed"
)

type OrderItem struct {
	ProductID string `db:"product_id" json:"productId"`
	Name      string `db:"name" json:"name"`
	Price     Money  `db:"price" json:"price"`
	Quantity  int    `db:"quantity" json:"quantity"`
}

type Order struct {
	ID            string        `db:"id" json:"id"`
	UserID        string        `db:"user_id" json:"userId"`
	CartID        string        `db:"cart_id" json:"cartId"`
	Items         []OrderItem   `db:"-" json:"items"`
	Subtotal      Money         `db:"subtotal" json:"subtotal"`
	Discount      Money         `db:"discount" json:"discount"`
	Total         Money         `db:"total" json:"total"`
	PaymentMethod PaymentMethod `db:"payment_method" json:"paymentMethod"`
	IsPaid        bool          `db:"is_paid" json:"isPaid"`
	CardLast4     string        `db:"card_last4" json:"cardLast4,omitempty"`
	Status        OrderStatus   `db:"status" json:"status"`
	CreatedAt     string        `db:"created_at" json:"createdAt"`
}

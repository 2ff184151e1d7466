package domain

// Order statuses. Transitions are enforced server-side; clients only request them.
const (
	OrderPending   = "pending"
	OrderPaid      = "paid"
	OrderShipped   = "shipped"
	OrderCompleted = "completed"
	OrderCancelled = "cancelled"
)

// Transaction statuses as reported back by the payment provider.
const (
	TxnPending = "pending"
	TxnSettled = "settled"
	TxnFailed  = "failed"
)

type Category struct {
	ID          string `db:"id" json:"id"`
	Name        string `db:"name" json:"name"`
	Description string `db:"description" json:"description"`
	BookCount   int    `db:"book_count" json:"book_count"`
	CreatedAt   string `db:"created_at" json:"created_at"`
	UpdatedAt   string `db:"updated_at" json:"updated_at,omitempty"`
}

type Book struct {
	ID          string  `db:"id" json:"id"`
	CategoryID  string  `db:"category_id" json:"category_id"`
	Title       string  `db:"title" json:"title"`
	Author      string  `db:"author" json:"author"`
	Publisher   string  `db:"publisher" json:"publisher"`
	Year        int     `db:"year" json:"year"`
	Price       float64 `db:"price" json:"price"`
	Stock       int     `db:"stock" json:"stock"`
	Description string  `db:"description" json:"description"`
	Image       string  `db:"image" json:"image"`
	CreatedAt   string  `db:"created_at" json:"created_at"`
	UpdatedAt   string  `db:"updated_at" json:"updated_at,omitempty"`
}

// CartItem is a cart row joined with its book (title/price/stock come from books).
type CartItem struct {
	ID       string  `db:"id" json:"id"`
	BookID   string  `db:"book_id" json:"book_id"`
	Title    string  `db:"title" json:"title"`
	Price    float64 `db:"price" json:"price"`
	Stock    int     `db:"stock" json:"stock"`
	Qty      int     `db:"qty" json:"qty"`
	Subtotal float64 `db:"subtotal" json:"subtotal"`
}

// ShippingAddress is embedded into orders; it is not an independent resource.
type ShippingAddress struct {
	Recipient  string `db:"shipping_recipient" json:"recipient"`
	Phone      string `db:"shipping_phone" json:"phone"`
	Address    string `db:"shipping_address" json:"address"`
	City       string `db:"shipping_city" json:"city"`
	Province   string `db:"shipping_province" json:"province"`
	PostalCode string `db:"shipping_postal_code" json:"postal_code"`
}

type Order struct {
	ID             string  `db:"id" json:"id"`
	UserID         string  `db:"user_id" json:"user_id"`
	Status         string  `db:"status" json:"status"`
	Total          float64 `db:"total" json:"total"`
	TrackingNumber string  `db:"tracking_number" json:"tracking_number,omitempty"`
	Notes          string  `db:"notes" json:"notes,omitempty"`
	ShippingAddress
	CreatedAt string      `db:"created_at" json:"created_at"`
	UpdatedAt string      `db:"updated_at" json:"updated_at,omitempty"`
	Items     []OrderItem `db:"-" json:"items,omitempty"`
}

// OrderItem snapshots title and price at checkout time.
type OrderItem struct {
	OrderID string  `db:"order_id" json:"-"`
	BookID  string  `db:"book_id" json:"book_id"`
	Title   string  `db:"title" json:"title"`
	Qty     int     `db:"qty" json:"qty"`
	Price   float64 `db:"price" json:"price"`
}

type Transaction struct {
	ID        string  `db:"id" json:"id"`
	OrderID   string  `db:"order_id" json:"order_id"`
	UserID    string  `db:"user_id" json:"user_id"`
	Amount    float64 `db:"amount" json:"amount"`
	SnapToken string  `db:"snap_token" json:"snap_token,omitempty"`
	Status    string  `db:"status" json:"status"`
	CreatedAt string  `db:"created_at" json:"created_at"`
	UpdatedAt string  `db:"updated_at" json:"updated_at,omitempty"`
}

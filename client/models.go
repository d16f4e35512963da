package client

// Drone is a rentable unit in the marketplace catalog.
type Drone struct {
	ID           int64   `json:"id"`
	Model        string  `json:"model"`
	Brand        string  `json:"brand"`
	Status       string  `json:"status"`
	PricePerHour float64 `json:"pricePerHour"`
	BatteryLife  int     `json:"batteryLife"`
	Location     string  `json:"location"`
	ImageURL     string  `json:"imageUrl"`
	GuideURL     string  `json:"guideUrl"`
	DronePrice   float64 `json:"dronePrice"`
}

// Drone availability states as the backend reports them.
const (
	DroneAvailable = "AVAILABLE"
	DroneRented    = "RENTED"
	DroneDamaged   = "DAMAGED"
)

// Profile is the backend's view of the signed-in user.
type Profile struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
	Role    string `json:"role"`
}

// Booking pairs a user with a drone over a rental window. Timestamps come
// back as zone-less ISO local datetimes, so they stay strings here.
type Booking struct {
	ID               int64   `json:"id"`
	User             Profile `json:"user"`
	Drone            Drone   `json:"drone"`
	BookingDateTime  string  `json:"bookingDateTime"`
	DeliveryDateTime string  `json:"deliveryDateTime"`
	StartTime        string  `json:"startTime"`
	EndTime          string  `json:"endTime"`
	TotalAmount      float64 `json:"totalAmount"`
	Status           string  `json:"status"`
	DeliverStatus    string  `json:"deliverStatus"`
}

const (
	BookingPending   = "PENDING"
	BookingConfirmed = "CONFIRMED"
	BookingCancelled = "CANCELLED"
	BookingCompleted = "COMPLETED"
)

// BookingRequest creates a booking for the signed-in user.
type BookingRequest struct {
	DroneID   int64  `json:"droneId"`
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
}

// Payment records a settled or attempted charge against a booking.
type Payment struct {
	ID                int64   `json:"id"`
	BookingID         int64   `json:"bookingId"`
	AmountPaid        float64 `json:"amountPaid"`
	PaymentMethod     string  `json:"paymentMethod"`
	PaymentDate       string  `json:"paymentDate"`
	PaymentStatus     string  `json:"paymentStatus"`
	RazorpayPaymentID string  `json:"razorpayPaymentId"`
	RazorpayOrderID   string  `json:"razorpayOrderId"`
	RazorpaySignature string  `json:"razorpaySignature"`
}

// CheckoutOrder is the gateway order the frontend opens checkout with.
// Field names follow the Razorpay order schema.
type CheckoutOrder struct {
	ID        string `json:"id"`
	Entity    string `json:"entity"`
	Amount    int64  `json:"amount"`
	AmountDue int64  `json:"amount_due"`
	Currency  string `json:"currency"`
	Receipt   string `json:"receipt"`
	Status    string `json:"status"`
	Attempts  int    `json:"attempts"`
	CreatedAt int64  `json:"created_at"`
	OfferID   string `json:"offer_id"`
}

// PaymentVerification is the signed proof of a completed checkout.
type PaymentVerification struct {
	BookingID         int64  `json:"bookingId" form:"bookingId"`
	RazorpayPaymentID string `json:"razorpayPaymentId" form:"razorpayPaymentId"`
	RazorpayOrderID   string `json:"razorpayOrderId" form:"razorpayOrderId"`
	RazorpaySignature string `json:"razorpaySignature" form:"razorpaySignature"`
}

// Penalty is a charge raised against a booking for damage or late return.
type Penalty struct {
	ID            int64   `json:"id"`
	PenaltyReason string  `json:"penaltyReason"`
	PenaltyAmount float64 `json:"penaltyAmount"`
	PenaltyStatus string  `json:"penaltyStatus"`
}

const (
	PenaltyUnpaid = "UNPAID"
	PenaltyPaid   = "PAID"
)

// Rating is a user's review of a drone they rented.
type Rating struct {
	ID      int64   `json:"id"`
	User    Profile `json:"user"`
	Drone   Drone   `json:"drone"`
	Rating  int     `json:"rating"`
	Comment string  `json:"comment"`
}

// RatingRequest submits a review for a drone.
type RatingRequest struct {
	DroneID int64  `json:"droneId"`
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

// Undertaking is the damage-and-deposit agreement a renter must accept
// before a booking is released.
type Undertaking struct {
	ID               int64   `json:"id"`
	IsAccepted       bool    `json:"isAccepted"`
	DepositAmount    float64 `json:"depositAmount"`
	DamageClauseText string  `json:"damageClauseText"`
	UniqueText       string  `json:"uniquetext"`
}

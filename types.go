package rentchain

import (
	"encoding/json"
	"time"

	"github.com/ethereum/go-ethereum/common/math"
)

const (
	APIVersion = "1.0"
	JWTSubject = "rentchain"
)

type Endpoint struct {
	Template string    `json:"template"`
	Method   string    `json:"method"`
	Query    *[]string `json:"query,omitempty"`
}

type WellKnownRentchain struct {
	Version   string              `json:"version"`
	FQDN      string              `json:"fqdn"`
	Operator  string              `json:"operator"`
	Endpoints map[string]Endpoint `json:"endpoints"`
}

// Event is the published form of a committed domain event.
type Event struct {
	ID        uint64          `json:"id"`
	Type      string          `json:"type"`
	Channels  []string        `json:"channels"`
	Payload   json.RawMessage `json:"payload"`
	CreatedAt time.Time       `json:"createdAt"`
}

type User struct {
	Address     string    `json:"address"`
	KYCVerified bool      `json:"kycVerified"`
	RoleFlags   uint32    `json:"roleFlags"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type Property struct {
	ID             uint64    `json:"id"`
	Owner          string    `json:"owner"`
	PricePerPeriod string    `json:"pricePerPeriod"`
	Status         string    `json:"status"`
	Available      bool      `json:"available"`
	DataHash       string    `json:"dataHash"`
	Title          *Title    `json:"title,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

type Title struct {
	TokenID  uint64    `json:"tokenId"`
	Owner    string    `json:"owner"`
	URI      string    `json:"uri"`
	MintedAt time.Time `json:"mintedAt"`
}

type Agreement struct {
	ID             uint64     `json:"id"`
	PropertyID     uint64     `json:"propertyId"`
	Owner          string     `json:"owner"`
	Tenant         string     `json:"tenant"`
	RentAmount     string     `json:"rentAmount"`
	DepositAmount  string     `json:"depositAmount"`
	DataHash       string     `json:"dataHash"`
	State          string     `json:"state"`
	SignedAt       *time.Time `json:"signedAt,omitempty"`
	RentPaidCount  uint64     `json:"rentPaidCount"`
	TotalRentPaid  string     `json:"totalRentPaid"`
	LastRentPaidAt *time.Time `json:"lastRentPaidAt,omitempty"`
	CancelReason   string     `json:"cancelReason,omitempty"`
	ClosedAt       *time.Time `json:"closedAt,omitempty"`
	CreatedAt      time.Time  `json:"createdAt"`
}

type EscrowBalance struct {
	AgreementID uint64 `json:"agreementId"`
	Balance     string `json:"balance"`
}

type Transfer struct {
	ID          uint64    `json:"id"`
	From        string    `json:"from"`
	To          string    `json:"to"`
	Amount      string    `json:"amount"`
	Kind        string    `json:"kind"`
	AgreementID uint64    `json:"agreementId"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Requests. Amounts accept decimal or 0x-prefixed hex wei.

type RegisterUserRequest struct {
	Address     string `json:"address"`
	KYCVerified bool   `json:"kycVerified"`
	RoleFlags   uint32 `json:"roleFlags"`
}

type RegisterPropertyRequest struct {
	Owner          string                `json:"owner"`
	PricePerPeriod *math.HexOrDecimal256 `json:"pricePerPeriod"`
	DataHash       string                `json:"dataHash"`
}

type CreateAgreementRequest struct {
	PropertyID    uint64                `json:"propertyId"`
	Tenant        string                `json:"tenant"`
	RentAmount    *math.HexOrDecimal256 `json:"rentAmount"`
	DepositAmount *math.HexOrDecimal256 `json:"depositAmount"`
	DataHash      string                `json:"dataHash"`
}

type PaymentRequest struct {
	Amount *math.HexOrDecimal256 `json:"amount"`
}

type CompleteRequest struct {
	Policy        uint8                 `json:"policy"`
	ReleaseAmount *math.HexOrDecimal256 `json:"releaseAmount"`
}

type CancelRequest struct {
	Reason string `json:"reason"`
}

type RegisterPropertyResponse struct {
	Property Property `json:"property"`
	Title    Title    `json:"title"`
}

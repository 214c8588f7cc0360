package delivery

// SaleType is how a batch sale is paid
type SaleType string

const (
	SaleTypeCash    SaleType = "contado"  // Paid in full on delivery
	SaleTypeCredit  SaleType = "fiado"    // Client owes the whole amount
	SaleTypeAccount SaleType = "a_cuenta" // Partial upfront payment, rest owed
)

// IsValid checks if the sale type is valid
func (t SaleType) IsValid() bool {
	switch t {
	case SaleTypeCash, SaleTypeCredit, SaleTypeAccount:
		return true
	}
	return false
}

// String returns the string representation of SaleType
func (t SaleType) String() string {
	return string(t)
}

// AllSaleTypes returns all valid sale types
func AllSaleTypes() []SaleType {
	return []SaleType{SaleTypeCash, SaleTypeCredit, SaleTypeAccount}
}

package enums

// ServiceSpeed is a sold bandwidth tier.
type ServiceSpeed string

const (
	Speed1Gbps   ServiceSpeed = "1 Gbps"
	Speed500Mbps ServiceSpeed = "500 Mbps"
	Speed200Mbps ServiceSpeed = "200 Mbps"
)

var validServiceSpeeds = []ServiceSpeed{
	Speed1Gbps,
	Speed500Mbps,
	Speed200Mbps,
}

// IsValid reports whether the value is a known speed tier. Free text is
// allowed on the customer record; this only gates the intake pre-fill.
func (s ServiceSpeed) IsValid() bool {
	for _, candidate := range validServiceSpeeds {
		if candidate == s {
			return true
		}
	}
	return false
}

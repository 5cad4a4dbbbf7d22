package intake

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/northfiber/fiberops-backend/pkg/enums"
)

const samplePage = `Service Order: 48213
Bill To
Harrison Mark
Harrison Janet
1420 Pine St
Rochester, IN 46975
Account: 112233
Service Point: Rochester 1420 Pine St City/Serv Area
Cell
(574) 555-0101
Janet
Home
574 555 0202
Customer
Package: INTERNET 1 GIG RESIDENTIAL
`

func TestExtractFullPage(t *testing.T) {
	prefill := Extract(samplePage)

	assert.Equal(t, "48213", prefill.ServiceOrderNumber)
	assert.Equal(t, "Mark & Janet Harrison", prefill.CustomerName)
	assert.Equal(t, "1420 Pine St", prefill.Street)
	assert.Equal(t, "Rochester", prefill.City)
	assert.Equal(t, "IN", prefill.State)
	assert.Equal(t, "46975", prefill.Zip)
	assert.Equal(t, "1 Gbps", prefill.ServiceSpeed)

	require.Len(t, prefill.Contacts, 2)
	assert.Equal(t, enums.ContactTypeMobile, prefill.Contacts[0].Type)
	assert.Equal(t, "(574) 555-0101", prefill.Contacts[0].Number)
	assert.Equal(t, "Janet", prefill.Contacts[0].Name)
	assert.Equal(t, enums.ContactTypeHome, prefill.Contacts[1].Type)
	assert.Equal(t, "574 555 0202", prefill.Contacts[1].Number)
	// "Customer" is the account holder marker, not a contact name
	assert.Empty(t, prefill.Contacts[1].Name)

	assert.Equal(t, "1420 Pine St, Rochester, IN 46975", prefill.Address())
}

func TestExtractServiceOrder(t *testing.T) {
	assert.Equal(t, "991", ExtractServiceOrder("Service Order: 991\n"))
	assert.Equal(t, "991", ExtractServiceOrder("Service Order:991"))
	assert.Empty(t, ExtractServiceOrder("Work Order: 991"))
}

func TestExtractStreetStripsTownPrefix(t *testing.T) {
	text := "Service Point: Kewanna 311 E Main St City/Serv Area"
	assert.Equal(t, "311 E Main St", ExtractStreet(text))
}

func TestExtractStreetWithoutMarkersSkips(t *testing.T) {
	assert.Empty(t, ExtractStreet("no service point marker here"))
	assert.Empty(t, ExtractStreet("Service Point: 100 Oak St but no end marker"))
}

func TestExtractCityStateZip(t *testing.T) {
	text := "Bill To\nSmith John\n400 Oak Dr\nAkron, IN 46910\nAccount: 1"
	city, state, zip := ExtractCityStateZip(text)
	assert.Equal(t, "Akron", city)
	assert.Equal(t, "IN", state)
	assert.Equal(t, "46910", zip)
}

func TestExtractCityStateZipPOBox(t *testing.T) {
	text := "Bill To\nSmith John\nPO Box 77\nCulver, IN 46511\nAccount: 1"
	city, state, zip := ExtractCityStateZip(text)
	assert.Equal(t, "Culver", city)
	assert.Equal(t, "IN", state)
	assert.Equal(t, "46511", zip)
}

func TestExtractCityStateZipUnknownTownKeepsStateAndZip(t *testing.T) {
	text := "Bill To\nSmith John\n400 Oak Dr\nSpringfield, IN 46000\nAccount: 1"
	city, state, zip := ExtractCityStateZip(text)
	assert.Empty(t, city)
	assert.Equal(t, "IN", state)
	assert.Equal(t, "46000", zip)
}

func TestExtractNameSingle(t *testing.T) {
	text := "Bill To\nSmith John\n400 Oak Dr\nAkron, IN 46910"
	assert.Equal(t, "John Smith", ExtractName(text))
}

func TestExtractNameDifferentSurnames(t *testing.T) {
	text := "Bill To\nSmith John\nDoe Jane\n400 Oak Dr\nAkron, IN 46910"
	assert.Equal(t, "John Smith & Jane Doe", ExtractName(text))
}

func TestExtractNameSkipsNonNameLines(t *testing.T) {
	text := "Bill To\nACCT 9981\nSmith John\n400 Oak Dr\nAkron, IN 46910"
	assert.Equal(t, "John Smith", ExtractName(text))
}

func TestExtractNameMissingBlock(t *testing.T) {
	assert.Empty(t, ExtractName("Service Order: 12"))
}

func TestExtractContactsConsecutiveTokens(t *testing.T) {
	text := "Cell\n574 555 1111\nHome\n574 555 2222\n"
	contacts := ExtractContacts(text)
	require.Len(t, contacts, 2)
	// the Home token right after the first number must not be read as a name
	assert.Empty(t, contacts[0].Name)
	assert.Equal(t, enums.ContactTypeHome, contacts[1].Type)
}

func TestExtractContactsTokenWithoutNumberIgnored(t *testing.T) {
	assert.Empty(t, ExtractContacts("Cell\nnot a number\n"))
}

func TestDetectSpeed(t *testing.T) {
	tests := []struct {
		text string
		want string
	}{
		{"INTERNET 1 GIG RESIDENTIAL", "1 Gbps"},
		{"1Gbps fiber", "1 Gbps"},
		{"INTERNET 500 MBPS", "500 Mbps"},
		{"500 Mg plan", "500 Mbps"},
		{"200 Mg basic", "200 Mbps"},
		{"no speed mentioned", ""},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, DetectSpeed(tc.text), tc.text)
	}
}

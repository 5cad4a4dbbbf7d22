// Package intake turns raw service-order page text into an advisory prefill
// for the customer creation form. Every pass is independent: one failing
// heuristic leaves its field blank and never blocks the others, and nothing
// extracted here is submitted without an operator's review.
package intake

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"github.com/northfiber/fiberops-backend/pkg/enums"
	"github.com/northfiber/fiberops-backend/pkg/types"
)

// Prefill is the advisory extraction result. Empty fields mean the
// heuristic found nothing.
type Prefill struct {
	CustomerName       string          `json:"customerName,omitempty"`
	Street             string          `json:"street,omitempty"`
	City               string          `json:"city,omitempty"`
	State              string          `json:"state,omitempty"`
	Zip                string          `json:"zip,omitempty"`
	ServiceOrderNumber string          `json:"serviceOrderNumber,omitempty"`
	ServiceSpeed       string          `json:"serviceSpeed,omitempty"`
	Contacts           []types.Contact `json:"contacts,omitempty"`
}

// Address assembles the street/city/state/zip fields into one line.
func (p Prefill) Address() string {
	parts := make([]string, 0, 4)
	if p.Street != "" {
		parts = append(parts, p.Street)
	}
	if p.City != "" {
		parts = append(parts, p.City)
	}
	tail := strings.TrimSpace(p.State + " " + p.Zip)
	if tail != "" {
		parts = append(parts, tail)
	}
	return strings.Join(parts, ", ")
}

var (
	serviceOrderRe = regexp.MustCompile(`Service Order:\s*(\d+)`)
	zipRe          = regexp.MustCompile(`\b(\d{5})\b`)
	numericLineRe  = regexp.MustCompile(`^[\d\s().+-]+$`)
	digitStartRe   = regexp.MustCompile(`^\d`)

	gigSpeedRe    = regexp.MustCompile(`(?i)1\s*(gig|gbps)`)
	fiveHundredRe = regexp.MustCompile(`(?i)500\s*(mg|mbps)`)
	twoHundredRe  = regexp.MustCompile(`(?i)200\s*(mg|mbps)`)
)

// regionStates are the state abbreviations plausible for the install area.
var regionStates = map[string]bool{
	"IN": true,
	"IL": true,
	"MI": true,
	"OH": true,
	"KY": true,
}

// townWhitelist is the fixed service-area town list matched against the
// tail of the text preceding the zip line.
var townWhitelist = []string{
	"Leiters Ford",
	"Twelve Mile",
	"Silver Lake",
	"Rochester",
	"Kewanna",
	"Mentone",
	"Claypool",
	"Culver",
	"Fulton",
	"Denver",
	"Athens",
	"Argos",
	"Akron",
	"Macy",
}

// contactTypeTokens are the labels a contact row starts with, mapped onto
// the form's contact types.
var contactTypeTokens = map[string]enums.ContactType{
	"CELL":     enums.ContactTypeMobile,
	"MOBILE":   enums.ContactTypeMobile,
	"HOME":     enums.ContactTypeHome,
	"WORK":     enums.ContactTypeWork,
	"BUSINESS": enums.ContactTypeWork,
	"OTHER":    enums.ContactTypeOther,
}

// Extract runs every heuristic pass over the page text.
func Extract(text string) Prefill {
	prefill := Prefill{
		ServiceOrderNumber: ExtractServiceOrder(text),
		Street:             ExtractStreet(text),
		ServiceSpeed:       DetectSpeed(text),
		Contacts:           ExtractContacts(text),
	}
	city, state, zip := ExtractCityStateZip(text)
	prefill.City = city
	prefill.State = state
	prefill.Zip = zip
	prefill.CustomerName = ExtractName(text)
	return prefill
}

// ExtractServiceOrder pulls the numeric order id off its label.
func ExtractServiceOrder(text string) string {
	if m := serviceOrderRe.FindStringSubmatch(text); m != nil {
		return m[1]
	}
	return ""
}

// ExtractStreet takes the text between the service point marker and the
// city/service marker, shedding any leading town token.
func ExtractStreet(text string) string {
	start := strings.Index(text, "Service Point:")
	if start == -1 {
		return ""
	}
	rest := text[start+len("Service Point:"):]
	end := strings.Index(rest, "City/Serv")
	if end == -1 {
		return ""
	}
	street := strings.TrimSpace(rest[:end])
	street = strings.Trim(street, ",")

	for _, town := range townWhitelist {
		upper := strings.ToUpper(street)
		prefix := strings.ToUpper(town)
		if strings.HasPrefix(upper, prefix) {
			street = strings.TrimSpace(street[len(town):])
			street = strings.TrimLeft(street, ",- ")
			break
		}
	}
	return strings.TrimSpace(strings.Join(strings.Fields(street), " "))
}

// ExtractCityStateZip scans the Bill To block: the first line starting with
// a digit or "PO Box" splits the name lines from the address lines, the zip
// line carries the 5-digit zip and a region state, and the preceding text's
// tail is matched against the town whitelist.
func ExtractCityStateZip(text string) (city, state, zip string) {
	block := billToBlock(text)
	if len(block) == 0 {
		return "", "", ""
	}

	addressStart := firstAddressLine(block)
	if addressStart == -1 {
		return "", "", ""
	}

	for i := addressStart; i < len(block); i++ {
		line := block[i]
		zm := zipRe.FindStringSubmatch(line)
		if zm == nil {
			continue
		}

		words := strings.Fields(line)
		for _, word := range words {
			candidate := strings.ToUpper(strings.Trim(word, ",."))
			if regionStates[candidate] {
				state = candidate
				break
			}
		}
		if state == "" {
			continue
		}
		zip = zm[1]

		// town is the tail of the text before the zip, matched against the
		// fixed whitelist
		before := strings.ToUpper(strings.TrimSpace(line[:zipRe.FindStringIndex(line)[0]]))
		before = strings.TrimSuffix(strings.TrimSpace(strings.TrimSuffix(before, state)), ",")
		for _, town := range townWhitelist {
			if strings.HasSuffix(strings.TrimSpace(before), strings.ToUpper(town)) {
				city = town
				break
			}
		}
		return city, state, zip
	}
	return "", "", ""
}

// ExtractName reads the one or two personal name lines at the top of the
// Bill To block. Source lines are "Last First"; two people sharing a
// surname join with "&".
func ExtractName(text string) string {
	block := billToBlock(text)
	if len(block) == 0 {
		return ""
	}
	addressStart := firstAddressLine(block)
	if addressStart == -1 {
		addressStart = len(block)
	}

	var people [][]string // [last, first...]
	for _, line := range block[:addressStart] {
		fields := strings.Fields(line)
		if len(fields) < 2 || len(fields) > 3 {
			continue
		}
		if !isNameLine(fields) {
			continue
		}
		people = append(people, fields)
		if len(people) == 2 {
			break
		}
	}

	switch len(people) {
	case 0:
		return ""
	case 1:
		return flipName(people[0])
	default:
		first, second := people[0], people[1]
		if strings.EqualFold(first[0], second[0]) {
			// shared surname: "First1 & First2 Last"
			return fmt.Sprintf("%s & %s %s",
				strings.Join(first[1:], " "),
				strings.Join(second[1:], " "),
				first[0])
		}
		return flipName(first) + " & " + flipName(second)
	}
}

// ExtractContacts walks the text for contact-type token lines: the line
// after the token is the number, and the line after that is a contact name
// unless it is itself a token or the literal "Customer".
func ExtractContacts(text string) []types.Contact {
	lines := splitLines(text)
	var contacts []types.Contact

	for i := 0; i < len(lines); i++ {
		contactType, ok := contactTypeTokens[strings.ToUpper(lines[i])]
		if !ok {
			continue
		}
		if i+1 >= len(lines) || !numericLineRe.MatchString(lines[i+1]) {
			continue
		}

		contact := types.Contact{
			ID:     uuid.New(),
			Type:   contactType,
			Number: strings.Join(strings.Fields(lines[i+1]), " "),
		}
		if i+2 < len(lines) {
			next := lines[i+2]
			_, isToken := contactTypeTokens[strings.ToUpper(next)]
			if !isToken && !strings.EqualFold(next, "Customer") && !numericLineRe.MatchString(next) {
				contact.Name = next
			}
		}
		contacts = append(contacts, contact)
		i++ // the number line is consumed
	}
	return contacts
}

// DetectSpeed maps the marketing speed wording onto the canonical tier
// labels. Unrecognized text leaves the field untouched.
func DetectSpeed(text string) string {
	switch {
	case gigSpeedRe.MatchString(text):
		return "1 Gbps"
	case fiveHundredRe.MatchString(text):
		return "500 Mbps"
	case twoHundredRe.MatchString(text):
		return "200 Mbps"
	default:
		return ""
	}
}

func billToBlock(text string) []string {
	start := strings.Index(text, "Bill To")
	if start == -1 {
		return nil
	}
	lines := splitLines(text[start+len("Bill To"):])

	// the block ends at the next section marker or after a handful of lines
	const maxBlockLines = 8
	var block []string
	for _, line := range lines {
		if strings.Contains(line, ":") && len(block) > 0 {
			break
		}
		block = append(block, line)
		if len(block) == maxBlockLines {
			break
		}
	}
	return block
}

func firstAddressLine(block []string) int {
	for i, line := range block {
		if digitStartRe.MatchString(line) || strings.HasPrefix(strings.ToUpper(line), "PO BOX") {
			return i
		}
	}
	return -1
}

func isNameLine(fields []string) bool {
	for _, field := range fields {
		cleaned := strings.Trim(field, ".,'-")
		if cleaned == "" {
			return false
		}
		for _, r := range cleaned {
			if (r < 'A' || r > 'Z') && (r < 'a' || r > 'z') {
				return false
			}
		}
	}
	return true
}

func flipName(fields []string) string {
	return strings.Join(fields[1:], " ") + " " + fields[0]
}

func splitLines(text string) []string {
	raw := strings.Split(text, "\n")
	out := make([]string, 0, len(raw))
	for _, line := range raw {
		trimmed := strings.TrimSpace(line)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

package extractor

import (
	"fmt"
	"regexp"
	"strings"
)

// Unknown is used for every labeled field missing from the document.
const Unknown = "N/A"

var (
	referencePattern   = regexp.MustCompile(`Nº\.?:\s*(\d{5})`)
	clientPattern      = regexp.MustCompile(`Cliente:\s*([^\n\r]+?)(?:\s*-\s*\d{5}|\n|\r)`)
	pickupPattern      = regexp.MustCompile(`Retirada:\s*(\d{2}/\d{2}/\d{4})`)
	pickupLeakPattern  = regexp.MustCompile(`Retirada:\s*\d{2}/\d{2}/\d{4}`)
	observationsLabel  = regexp.MustCompile(`Observações:\s*`)
	tableHeaderPattern = regexp.MustCompile(`Código:\s*Referência:\s*Descrição:`)
	tableBodyPattern   = regexp.MustCompile(`Descrição:\s*Quantidade:.*?Preço Total:\s*([\s\S]*?)Total Volumes:`)
	itemRowPattern     = regexp.MustCompile(`(?:\d+\s+)?(?:\d+\s+)?([^\d].*?)\s+(\d+\s*UND)`)
)

// Seed is the structured record produced from one document.
type Seed struct {
	Reference    string
	Client       string
	Title        string
	Body         string
	DueDate      string
	Items        []string
	Observations string
}

// ExtractionError reports a document whose text could not be turned into a Seed.
type ExtractionError struct {
	Reason string
	Err    error
}

func (e *ExtractionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("extraction error: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("extraction error: %s", e.Reason)
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}

// Extract parses the fixed order layout out of raw document text.
// Missing labels degrade to Unknown; only unusable input fails.
func Extract(raw string) (seed *Seed, err error) {
	defer func() {
		if r := recover(); r != nil {
			seed = nil
			err = &ExtractionError{Reason: "parser panic", Err: fmt.Errorf("%v", r)}
		}
	}()

	if strings.TrimSpace(raw) == "" {
		return nil, &ExtractionError{Reason: "document has no text"}
	}

	seed = &Seed{
		Reference:    firstGroup(referencePattern, raw),
		Client:       firstGroup(clientPattern, raw),
		DueDate:      firstGroup(pickupPattern, raw),
		Observations: extractObservations(raw),
		Items:        extractItems(raw),
	}

	seed.Title = strings.TrimSpace(fmt.Sprintf("%s | %s", seed.Reference, seed.Client))
	seed.Body = buildBody(seed.Items, seed.Observations)

	return seed, nil
}

func firstGroup(re *regexp.Regexp, text string) string {
	m := re.FindStringSubmatch(text)
	if m == nil {
		return Unknown
	}
	return strings.TrimSpace(m[1])
}

func extractObservations(text string) string {
	label := observationsLabel.FindStringIndex(text)
	if label == nil {
		return Unknown
	}
	start := label[1]

	end := len(text)
	if header := tableHeaderPattern.FindStringIndex(text); header != nil {
		end = header[0]
	}
	if end < start {
		return Unknown
	}

	var lines []string
	for _, line := range strings.Split(strings.TrimSpace(text[start:end]), "\n") {
		line = strings.TrimSpace(line)
		line = strings.TrimSpace(pickupLeakPattern.ReplaceAllString(line, ""))
		if line != "" {
			lines = append(lines, line)
		}
	}

	if len(lines) == 0 {
		return Unknown
	}
	return strings.Join(lines, "\n")
}

func extractItems(text string) []string {
	items := []string{}

	m := tableBodyPattern.FindStringSubmatch(text)
	if m == nil {
		return items
	}

	for _, line := range strings.Split(m[1], "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		row := itemRowPattern.FindStringSubmatch(line)
		if row == nil {
			continue
		}
		items = append(items, fmt.Sprintf("%s - %s", strings.TrimSpace(row[1]), strings.TrimSpace(row[2])))
	}
	return items
}

func buildBody(items []string, observations string) string {
	var b strings.Builder
	if len(items) > 0 {
		b.WriteString(strings.Join(items, "\n"))
		b.WriteString("\n\n")
	}
	if observations != "" && observations != Unknown {
		b.WriteString(observations)
	}
	return strings.TrimSpace(b.String())
}

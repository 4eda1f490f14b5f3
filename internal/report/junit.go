package report

import (
	"encoding/xml"
	"fmt"
	"strconv"

	"bmctest/internal/domain"
)

// Seconds is a duration in seconds written with millisecond precision
type Seconds float64

// MarshalXMLAttr implements xml.MarshalerAttr
func (s Seconds) MarshalXMLAttr(name xml.Name) (xml.Attr, error) {
	return xml.Attr{Name: name, Value: strconv.FormatFloat(float64(s), 'f', 3, 64)}, nil
}

// UnmarshalXMLAttr implements xml.UnmarshalerAttr
func (s *Seconds) UnmarshalXMLAttr(attr xml.Attr) error {
	if attr.Value == "" {
		*s = 0
		return nil
	}
	v, err := strconv.ParseFloat(attr.Value, 64)
	if err != nil {
		return fmt.Errorf("parse %s=%q: %w", attr.Name.Local, attr.Value, err)
	}
	*s = Seconds(v)
	return nil
}

// Document is the serialized run: one testsuites root holding one testsuite per category
type Document struct {
	XMLName   xml.Name `xml:"testsuites"`
	Name      string   `xml:"name,attr"`
	Timestamp string   `xml:"timestamp,attr"`
	ID        string   `xml:"id,attr,omitempty"`
	Tests     int      `xml:"tests,attr"`
	Failures  int      `xml:"failures,attr"`
	Errors    int      `xml:"errors,attr"`
	Skipped   int      `xml:"skipped,attr"`
	Time      Seconds  `xml:"time,attr"`
	Suites    []Suite  `xml:"testsuite"`
}

// Suite is one category with its counters
type Suite struct {
	Name     string  `xml:"name,attr"`
	Tests    int     `xml:"tests,attr"`
	Failures int     `xml:"failures,attr"`
	Errors   int     `xml:"errors,attr"`
	Skipped  int     `xml:"skipped,attr"`
	Time     Seconds `xml:"time,attr"`
	Cases    []Case  `xml:"testcase"`
}

// Case is one recorded check outcome
type Case struct {
	Name    string   `xml:"name,attr"`
	Time    Seconds  `xml:"time,attr"`
	Failure *Message `xml:"failure,omitempty"`
	Error   *Message `xml:"error,omitempty"`
	Skipped *Message `xml:"skipped,omitempty"`
}

// Message carries the human readable detail of a non-passing case
type Message struct {
	Message string `xml:"message,attr"`
	Text    string `xml:",chardata"`
}

// Status derives the outcome kind from the nested elements
func (c Case) Status() domain.Status {
	switch {
	case c.Error != nil:
		return domain.StatusError
	case c.Failure != nil:
		return domain.StatusFailed
	case c.Skipped != nil:
		return domain.StatusSkipped
	}
	return domain.StatusPassed
}

// Detail returns the case message regardless of its kind
func (c Case) Detail() string {
	for _, m := range []*Message{c.Error, c.Failure, c.Skipped} {
		if m != nil {
			if m.Message != "" {
				return m.Message
			}
			return m.Text
		}
	}
	return ""
}

// Broken reports whether any case failed or errored
func (d *Document) Broken() bool {
	return d.Failures > 0 || d.Errors > 0
}

// NonPassing flattens every non-passing case, in report order
func (d *Document) NonPassing() []domain.Failure {
	var out []domain.Failure
	for _, s := range d.Suites {
		for _, c := range s.Cases {
			st := c.Status()
			if st == domain.StatusPassed {
				continue
			}
			out = append(out, domain.Failure{
				Suite:   s.Name,
				Name:    c.Name,
				Status:  st,
				Message: c.Detail(),
				Seconds: float64(c.Time),
			})
		}
	}
	return out
}

// Encode renders the document with an XML declaration
func (d *Document) Encode() ([]byte, error) {
	data, err := xml.MarshalIndent(d, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal report: %w", err)
	}
	out := make([]byte, 0, len(xml.Header)+len(data)+1)
	out = append(out, xml.Header...)
	out = append(out, data...)
	return append(out, '\n'), nil
}

// Decode parses a serialized report
func Decode(data []byte) (*Document, error) {
	var doc Document
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse report: %w", err)
	}
	return &doc, nil
}

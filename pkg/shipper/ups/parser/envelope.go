// Package parser turns raw UPS response bodies into typed results. Every
// result embeds an Envelope, so success and error reporting read the same
// for all operations. Carrier-side failures are reported through the
// envelope; only undecodable bodies produce an error.
package parser

import (
	"github.com/tournevent/upslink/pkg/shipper"
	"github.com/tournevent/upslink/pkg/shipper/ups/document"
)

const carrierName = "ups"

// Status codes reported in the envelope.
const (
	StatusSuccess = "1"
	StatusFailure = "0"
	StatusMissing = "-1"
)

// Alert is one error or alert entry of a response.
type Alert struct {
	Code        string
	Description string
}

// Envelope is the status block common to every UPS response.
type Envelope struct {
	StatusCode        string
	StatusDescription string
	Alerts            []Alert
}

// Success reports whether UPS accepted the request.
func (e Envelope) Success() bool {
	return e.StatusCode == StatusSuccess
}

// ErrorDescription returns the last alert description. UPS lists the most
// specific error last. It is empty for successful responses, which may
// still carry informational alerts.
func (e Envelope) ErrorDescription() string {
	if e.Success() || len(e.Alerts) == 0 {
		return ""
	}
	return e.Alerts[len(e.Alerts)-1].Description
}

// ParseEnvelope reads the status block of the rootName document. It
// understands the current ResponseStatus shape, the legacy flat status
// fields and the REST error body. A missing root yields StatusMissing.
func ParseEnvelope(root document.Tree, rootName string) Envelope {
	if errs := root.Path("response", "errors"); errs != nil {
		env := Envelope{StatusCode: StatusFailure, StatusDescription: "Failure"}
		for _, e := range document.List(errs) {
			env.Alerts = append(env.Alerts, Alert{
				Code:        document.Text(document.Lookup(e, "code")),
				Description: document.Text(document.Lookup(e, "message")),
			})
		}
		return env
	}

	body := root.Path(rootName)
	if document.Object(body) == nil {
		return Envelope{StatusCode: StatusMissing}
	}
	response := document.Lookup(body, "Response")

	env := Envelope{
		StatusCode:        document.Text(document.Lookup(response, "ResponseStatus", "Code")),
		StatusDescription: document.Text(document.Lookup(response, "ResponseStatus", "Description")),
	}
	if env.StatusCode == "" {
		env.StatusCode = document.Text(document.Lookup(response, "ResponseStatusCode"))
		env.StatusDescription = document.Text(document.Lookup(response, "ResponseStatusDescription"))
	}
	for _, key := range []string{"Alert", "Error"} {
		for _, entry := range document.List(document.Lookup(response, key)) {
			env.Alerts = append(env.Alerts, parseAlert(entry))
		}
	}
	return env
}

func parseAlert(entry any) Alert {
	a := Alert{
		Code:        document.Text(document.Lookup(entry, "Code")),
		Description: document.Text(document.Lookup(entry, "Description")),
	}
	if a.Code == "" {
		a.Code = document.Text(document.Lookup(entry, "ErrorCode"))
	}
	if a.Description == "" {
		a.Description = document.Text(document.Lookup(entry, "ErrorDescription"))
	}
	return a
}

// rootName returns the first of names present in the tree, or the first
// name when none is.
func rootName(root document.Tree, names ...string) string {
	for _, name := range names {
		if _, ok := root[name]; ok {
			return name
		}
	}
	return names[0]
}

func decode(raw []byte, g document.Generation) (document.Tree, error) {
	tree, err := document.Decode(raw, g)
	if err != nil {
		return nil, malformed("Response could not be decoded", err)
	}
	return tree, nil
}

func malformed(message string, cause error) *shipper.ShipperError {
	return shipper.NewShipperError(carrierName, shipper.CodeMalformed, message).WithCause(cause)
}

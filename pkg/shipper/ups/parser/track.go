package parser

import (
	"bytes"
	"encoding/json"
	"sort"
	"strings"
	"time"

	"github.com/tournevent/upslink/pkg/shipper/ups/document"
)

// Activity is one tracking scan.
type Activity struct {
	Date        time.Time
	Time        string
	StatusCode  string
	Description string
	Location    string

	sortKey string
}

// TrackResult is the outcome of a tracking request. The status fields
// describe the latest activity.
type TrackResult struct {
	Envelope
	TrackingNumber        string
	StatusDate            time.Time
	StatusTypeCode        string
	StatusTypeDescription string

	// Events lists every activity, newest first.
	Events []Activity
}

var dateLayouts = []string{"20060102", "2006-01-02"}

// ParseTrack reads a trackResponse from the REST API or a legacy
// TrackResponse document.
func ParseTrack(raw []byte, g document.Generation) (*TrackResult, error) {
	if g == document.JSON {
		raw = unwrapJSON(raw)
	}
	tree, err := decode(raw, g)
	if err != nil {
		return nil, err
	}
	if g == document.XML {
		return parseLegacyTrack(tree)
	}
	return parseCurrentTrack(tree)
}

// unwrapJSON undoes the string encoding some gateways apply to the
// tracking body. A body that is still not JSON gets its escapes replaced.
func unwrapJSON(raw []byte) []byte {
	body := bytes.TrimSpace(raw)
	for i := 0; i < 2 && len(body) > 0 && body[0] == '"'; i++ {
		var s string
		if err := json.Unmarshal(body, &s); err != nil {
			break
		}
		body = bytes.TrimSpace([]byte(s))
	}
	if json.Valid(body) {
		return body
	}
	body = bytes.ReplaceAll(body, []byte(`\"`), []byte(`"`))
	return bytes.ReplaceAll(body, []byte(`\n`), []byte("\n"))
}

func parseCurrentTrack(tree document.Tree) (*TrackResult, error) {
	if errs := tree.Path("response", "errors"); errs != nil {
		return &TrackResult{Envelope: ParseEnvelope(tree, "trackResponse")}, nil
	}

	shipment := tree.Path("trackResponse", "shipment")
	if shipment == nil {
		return &TrackResult{Envelope: Envelope{StatusCode: StatusMissing}}, nil
	}
	result := &TrackResult{
		Envelope:       Envelope{StatusCode: StatusSuccess, StatusDescription: "Success"},
		TrackingNumber: document.Text(document.Lookup(shipment, "inquiryNumber")),
	}

	pkg := document.Lookup(shipment, "package")
	if pkg == nil {
		result.Envelope = Envelope{StatusCode: StatusFailure, StatusDescription: "Failure"}
		for _, w := range document.List(document.Lookup(shipment, "warnings")) {
			result.Alerts = append(result.Alerts, Alert{
				Code:        document.Text(document.Lookup(w, "code")),
				Description: document.Text(document.Lookup(w, "message")),
			})
		}
		return result, nil
	}
	if number := document.Text(document.Lookup(pkg, "trackingNumber")); number != "" {
		result.TrackingNumber = number
	}

	for _, a := range document.List(document.Lookup(pkg, "activity")) {
		status := document.Lookup(a, "status")
		act := Activity{
			Time:        document.Text(document.Lookup(a, "time")),
			StatusCode:  document.Text(document.Lookup(status, "code")),
			Description: strings.TrimSpace(document.Text(document.Lookup(status, "description"))),
			Location:    location(document.Lookup(a, "location", "address"), "city", "countryCode"),
		}
		if act.StatusCode == "" {
			act.StatusCode = document.Text(document.Lookup(status, "type"))
		}
		date := document.Text(document.Lookup(a, "date"))
		act.Date = parseDate(date)

		gmtDate := document.Text(document.Lookup(a, "gmtDate"))
		if gmtDate != "" {
			act.sortKey = sortKey(gmtDate, document.Text(document.Lookup(a, "gmtTime")))
		} else {
			act.sortKey = sortKey(date, act.Time)
		}
		result.Events = append(result.Events, act)
	}
	result.finish()
	return result, nil
}

func parseLegacyTrack(tree document.Tree) (*TrackResult, error) {
	const root = "TrackResponse"
	result := &TrackResult{Envelope: ParseEnvelope(tree, root)}
	if !result.Success() {
		return result, nil
	}

	shipment := tree.Path(root, "Shipment")
	pkg := document.Lookup(shipment, "Package")
	result.TrackingNumber = document.Text(document.Lookup(pkg, "TrackingNumber"))
	if result.TrackingNumber == "" {
		result.TrackingNumber = document.Text(document.Lookup(shipment, "ShipmentIdentificationNumber"))
	}

	for _, a := range document.List(document.Lookup(pkg, "Activity")) {
		date := document.Text(document.Lookup(a, "Date"))
		act := Activity{
			Date:        parseDate(date),
			Time:        document.Text(document.Lookup(a, "Time")),
			StatusCode:  document.Text(document.Lookup(a, "Status", "StatusType", "Code")),
			Description: strings.TrimSpace(document.Text(document.Lookup(a, "Status", "StatusType", "Description"))),
			Location:    location(document.Lookup(a, "ActivityLocation", "Address"), "City", "CountryCode"),
		}
		act.sortKey = sortKey(date, act.Time)
		result.Events = append(result.Events, act)
	}
	result.finish()
	return result, nil
}

// finish orders the events newest first and copies the latest one into
// the status fields.
func (r *TrackResult) finish() {
	sort.SliceStable(r.Events, func(i, j int) bool {
		return r.Events[i].sortKey > r.Events[j].sortKey
	})
	if len(r.Events) == 0 {
		return
	}
	latest := r.Events[0]
	r.StatusDate = latest.Date
	r.StatusTypeCode = latest.StatusCode
	r.StatusTypeDescription = latest.Description
}

func sortKey(date, clock string) string {
	strip := strings.NewReplacer("-", "", ":", "")
	return strip.Replace(date) + strip.Replace(clock)
}

func parseDate(value string) time.Time {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t
		}
	}
	return time.Time{}
}

func location(addr any, cityKey, countryKey string) string {
	city := document.Text(document.Lookup(addr, cityKey))
	country := document.Text(document.Lookup(addr, countryKey))
	switch {
	case city != "" && country != "":
		return city + ", " + country
	case city != "":
		return city
	default:
		return country
	}
}

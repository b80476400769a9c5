package parser

import "github.com/tournevent/upslink/pkg/shipper/ups/document"

// LabelResult is the outcome of a label recovery request.
type LabelResult struct {
	Envelope
	Labels []PackageResult
}

// Label returns the recovered label for trackingNumber.
func (r *LabelResult) Label(trackingNumber string) (PackageResult, bool) {
	for _, l := range r.Labels {
		if l.TrackingNumber == trackingNumber {
			return l, true
		}
	}
	return PackageResult{}, false
}

// TrackingNumber returns the first label's tracking number.
func (r *LabelResult) TrackingNumber() string {
	if len(r.Labels) == 0 {
		return ""
	}
	return r.Labels[0].TrackingNumber
}

// LabelImage returns the first label's image.
func (r *LabelResult) LabelImage() Image {
	if len(r.Labels) == 0 {
		return Image{}
	}
	return r.Labels[0].Label
}

// ParseLabelRecovery reads a LabelRecoveryResponse. LabelResults may be a
// single entry or a list.
func ParseLabelRecovery(raw []byte, g document.Generation) (*LabelResult, error) {
	tree, err := decode(raw, g)
	if err != nil {
		return nil, err
	}
	const root = "LabelRecoveryResponse"
	result := &LabelResult{Envelope: ParseEnvelope(tree, root)}
	if !result.Success() {
		return result, nil
	}

	for _, entry := range document.List(tree.Path(root, "LabelResults")) {
		p, err := parsePackageResult(entry, "LabelImage", "LabelImageFormat")
		if err != nil {
			return nil, err
		}
		result.Labels = append(result.Labels, p)
	}
	return result, nil
}

package builder

import (
	"fmt"
	"strings"

	"github.com/tournevent/upslink/pkg/shipper/ups/address"
	"github.com/tournevent/upslink/pkg/shipper/ups/document"
)

type partyRole int

const (
	roleShipper partyRole = iota
	roleShipTo
	roleShipFrom
	roleSoldTo
)

func newPartyNode(p Party, role partyRole, g document.Generation) (*document.Node, error) {
	addr := p.Address
	if role == roleSoldTo {
		addr.SkipIrelandValidation = true
	}
	addrNode, err := newAddressNode(addr, g)
	if err != nil {
		return nil, err
	}

	node := document.New()
	node.Set("Name", Truncate(p.CompanyName, maxName))
	node.Set("AttentionName", Truncate(p.AttentionName, maxName))
	node.SetIf("TaxIdentificationNumber", p.TaxID)
	if p.PhoneNumber != "" {
		node.Child("Phone").Set("Number", Truncate(p.PhoneNumber, maxPhone))
	}
	if role == roleShipper {
		node.Set("ShipperNumber", p.AccountNumber)
	}
	node.SetIf("EMailAddress", Truncate(p.Email, maxEmail))
	node.Set("Address", addrNode)
	return node, nil
}

// newAddressNode normalizes the state at call time, so an invalid Irish
// county fails the Add* call that introduced it.
func newAddressNode(a Address, g document.Generation) (*document.Node, error) {
	state, err := address.Normalize(a.Country, a.State, a.SkipIrelandValidation)
	if err != nil {
		return nil, err
	}

	var lines []string
	for _, line := range a.Lines {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, Truncate(line, maxAddressLine))
		}
		if len(lines) == maxAddressLines {
			break
		}
	}

	node := document.New()
	if g == document.XML {
		// The legacy schema numbers its address line elements.
		for i, line := range lines {
			node.Set(fmt.Sprintf("AddressLine%d", i+1), line)
		}
	} else if len(lines) > 0 {
		node.Set("AddressLine", lines)
	}
	node.Set("City", Truncate(a.City, maxCity))
	node.SetIf("StateProvinceCode", Truncate(state, maxState))
	node.SetIf("PostalCode", Truncate(a.PostalCode, maxPostalCode))
	node.Set("CountryCode", Truncate(strings.ToUpper(a.Country), maxCountryCode))
	return node, nil
}

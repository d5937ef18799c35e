// Package wallet talks to the Google Wallet objects API: class and object
// management, issuer accounts, permissions, signed save links and batched
// object inserts.
package wallet

import (
	"fmt"
	"sort"
	"strings"
)

// ObjectType selects the wallet pass variant. It determines the class and
// object endpoint segments and the save-link payload key.
type ObjectType string

const (
	Generic     ObjectType = "generic"
	GiftCard    ObjectType = "giftcard"
	Loyalty     ObjectType = "loyalty"
	Offer       ObjectType = "offer"
	EventTicket ObjectType = "eventticket"
	Flight      ObjectType = "flight"
	Transit     ObjectType = "transit"
)

type typeInfo struct {
	classSegment  string
	objectSegment string
	payloadKey    string
}

var typeInfos = map[ObjectType]typeInfo{
	Generic:     {"genericClass", "genericObject", "genericObjects"},
	GiftCard:    {"giftCardClass", "giftCardObject", "giftCardObjects"},
	Loyalty:     {"loyaltyClass", "loyaltyObject", "loyaltyObjects"},
	Offer:       {"offerClass", "offerObject", "offerObjects"},
	EventTicket: {"eventTicketClass", "eventTicketObject", "eventTicketObjects"},
	Flight:      {"flightClass", "flightObject", "flightObjects"},
	Transit:     {"transitClass", "transitObject", "transitObjects"},
}

// ParseObjectType maps a configuration string onto a known variant.
func ParseObjectType(s string) (ObjectType, error) {
	t := ObjectType(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := typeInfos[t]; !ok {
		names := make([]string, 0, len(typeInfos))
		for k := range typeInfos {
			names = append(names, string(k))
		}
		sort.Strings(names)
		return "", fmt.Errorf("unknown wallet object type %q (one of %s)", s, strings.Join(names, ", "))
	}
	return t, nil
}

// ClassSegment is the REST collection for classes of this type, e.g. "genericClass".
func (t ObjectType) ClassSegment() string { return typeInfos[t].classSegment }

// ObjectSegment is the REST collection for objects of this type, e.g. "genericObject".
func (t ObjectType) ObjectSegment() string { return typeInfos[t].objectSegment }

// PayloadKey is the claim-set key holding objects of this type, e.g. "genericObjects".
func (t ObjectType) PayloadKey() string { return typeInfos[t].payloadKey }

// Role is an access level on an issuer account.
type Role string

const (
	RoleReader Role = "READER"
	RoleWriter Role = "WRITER"
	RoleOwner  Role = "OWNER"
)

func (r Role) Valid() bool {
	switch Role(strings.ToUpper(string(r))) {
	case RoleReader, RoleWriter, RoleOwner:
		return true
	}
	return false
}

// Permission grants a role on an issuer account to one email address.
type Permission struct {
	EmailAddress string `json:"emailAddress"`
	Role         Role   `json:"role"`
}

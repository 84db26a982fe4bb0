package services

import "strings"

// notProvided is what the call agent fills in when the caller gives no address.
const notProvided = "Not provided"

// NormalizeAddress trims the address and collapses whitespace runs to single
// spaces. ok is false when there is nothing worth geocoding.
func NormalizeAddress(raw string) (address string, ok bool) {
	address = strings.Join(strings.Fields(raw), " ")
	if address == "" || strings.EqualFold(address, notProvided) {
		return "", false
	}
	return address, true
}

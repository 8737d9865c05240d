package hospital

import (
	"fmt"
	"strings"
)

// Department locations assigned to new orders by target department.
const (
	LocationLab      = "Diagnostic Wing - Floor 2"
	LocationPharmacy = "Clinical Pharmacy - Floor 1"
	LocationWard     = "Ward Level"
)

// LocationFor maps an order's assignee to the ward location printed on the
// order. Anything outside lab and pharmacy stays at ward level.
func LocationFor(assignee Role) string {
	switch assignee {
	case RoleLab:
		return LocationLab
	case RolePharmacy:
		return LocationPharmacy
	default:
		return LocationWard
	}
}

// ReferralPrefix returns the description prefix recorded when a referring
// doctor is attached to an order, or "" when there is none.
func ReferralPrefix(doctorName string) string {
	if doctorName == "" {
		return ""
	}
	return fmt.Sprintf("[Consult/Ref: Dr. %s] ", doctorName)
}

// AssignmentMessage is the notification text fanned out when an order is
// created for a department.
func AssignmentMessage(a PatientAction) string {
	return fmt.Sprintf("New %s assigned for Patient ID: %s", strings.ToLower(string(a.Type)), a.PatientID)
}

package hospital

// TotalBill sums the billed amounts over a patient's orders, treating a
// missing amount as zero. The aggregate is recomputed from the order records
// on every query; no running total is kept, so it can never drift from the
// underlying orders. PaymentStatus plays no part in the sum.
func TotalBill(actions []PatientAction) float64 {
	var total float64
	for _, a := range actions {
		if a.BillAmount != nil {
			total += *a.BillAmount
		}
	}
	return total
}

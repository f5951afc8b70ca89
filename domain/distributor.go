package domain

type Distributor struct {
	ID             int64  `db:"id" json:"id"`
	Name           string `db:"name" json:"name"`
	Phone          string `db:"phone" json:"phone"`
	GST            string `db:"gst" json:"gst"`
	AdditionalInfo string `db:"additional_info" json:"additional_info"`
	CreatedAt      string `db:"created_at" json:"created_at"`
}

// Purchase is a stock-in bill recorded against a distributor. Bookkeeping
// only; it does not move catalog stock.
type Purchase struct {
	ID            int64   `db:"id" json:"id"`
	DistributorID int64   `db:"distributor_id" json:"distributor_id"`
	BillNumber    string  `db:"bill_number" json:"bill_number"`
	BillDate      string  `db:"bill_date" json:"bill_date"`
	TotalBill     float64 `db:"total_bill" json:"total_bill"`
	Notes         string  `db:"notes" json:"notes"`
	FinalPrice    float64 `db:"final_price" json:"final_price"`
}

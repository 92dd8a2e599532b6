package mailer

// Lead is the summary emailed to the business when a customer completes the
// funnel and is handed to the booking provider.
type Lead struct {
	Name       string
	Email      string
	Phone      string
	Address    string
	Zip        string
	Service    string
	Date       string
	TimeWindow string
	Frequency  string
	Total      int
	Notes      string
}

type Service interface {
	SendLeadNotification(lead Lead) error
}

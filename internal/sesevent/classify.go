package sesevent

// Details is the normalized view of one notification: what the log store
// needs, independent of the event shape it came from.
type Details struct {
	Timestamp    string
	Destinations []string
	Link         string
	ErrorMessage string
}

// Classify maps a notification to its normalized details. Pure. An
// unrecognized event type yields the zero Details; callers must treat an
// empty Timestamp as a classification failure.
func Classify(r *Record) Details {
	return Details{
		Timestamp:    eventTimestamp(r),
		Destinations: eventDestinations(r),
		Link:         eventLink(r),
		ErrorMessage: eventErrorMessage(r),
	}
}

func eventTimestamp(r *Record) string {
	switch r.EventType {
	case TypeSend:
		return r.Mail.Timestamp
	case TypeOpen:
		if r.Open != nil {
			return r.Open.Timestamp
		}
	case TypeDelivery:
		if r.Delivery != nil {
			return r.Delivery.Timestamp
		}
	case TypeClick:
		if r.Click != nil {
			return r.Click.Timestamp
		}
	case TypeBounce:
		if r.Bounce != nil {
			return r.Bounce.Timestamp
		}
	case TypeReject:
		if r.Reject != nil {
			return r.Reject.Timestamp
		}
	case TypeComplaint:
		if r.Complaint != nil {
			return r.Complaint.Timestamp
		}
	}
	return ""
}

func eventDestinations(r *Record) []string {
	switch r.EventType {
	case TypeSend, TypeOpen, TypeClick, TypeReject:
		// The original recipient list of the send.
		return r.Mail.Destination
	case TypeDelivery:
		if r.Delivery != nil {
			return r.Delivery.Recipients
		}
	case TypeBounce:
		if r.Bounce != nil {
			return recipientAddresses(r.Bounce.BouncedRecipients)
		}
	case TypeComplaint:
		if r.Complaint != nil {
			return recipientAddresses(r.Complaint.BouncedRecipients)
		}
	}
	return nil
}

func eventLink(r *Record) string {
	switch r.EventType {
	case TypeClick:
		if r.Click != nil {
			return r.Click.Link
		}
	}
	return ""
}

func eventErrorMessage(r *Record) string {
	switch r.EventType {
	case TypeBounce:
		if r.Bounce != nil {
			return r.Bounce.BounceType
		}
	case TypeComplaint:
		if r.Complaint != nil {
			return r.Complaint.ComplaintSubType
		}
	case TypeReject:
		if r.Reject != nil {
			return r.Reject.Reason
		}
	}
	return ""
}

func recipientAddresses(recipients []Recipient) []string {
	if len(recipients) == 0 {
		return nil
	}
	addrs := make([]string, len(recipients))
	for i, r := range recipients {
		addrs[i] = r.EmailAddress
	}
	return addrs
}

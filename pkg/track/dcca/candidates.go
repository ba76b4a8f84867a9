package dcca

import "github.com/robotalks/track.go/pkg/locodb"

// Candidate is a decoder known to support DCC-A.
type Candidate struct {
	Vendor  uint16
	UID     uint32
	Retries int
}

type candidates []Candidate

// load rebuilds the list from the records configured by DCC-A.
func (c *candidates) load(db locodb.DB) {
	*c = (*c)[:0]
	db.Each(func(r locodb.Record) bool {
		if r.Config == locodb.ConfigDCCA {
			*c = append(*c, Candidate{Vendor: r.VendorID, UID: r.UID})
		}
		return true
	})
}

func (c *candidates) find(vendor uint16, uid uint32) *Candidate {
	for i := range *c {
		if (*c)[i].Vendor == vendor && (*c)[i].UID == uid {
			return &(*c)[i]
		}
	}
	return nil
}

func (c *candidates) get(vendor uint16, uid uint32) *Candidate {
	if cand := c.find(vendor, uid); cand != nil {
		return cand
	}
	*c = append(*c, Candidate{Vendor: vendor, UID: uid})
	return &(*c)[len(*c)-1]
}

// failed counts a failed registration step of the decoder.
func (c *candidates) failed(vendor uint16, uid uint32) int {
	cand := c.get(vendor, uid)
	cand.Retries++
	return cand.Retries
}

func (c *candidates) succeeded(vendor uint16, uid uint32) {
	c.get(vendor, uid).Retries = 0
}

func (c *candidates) blocked(vendor uint16, uid uint32, limit int) bool {
	cand := c.find(vendor, uid)
	return cand != nil && limit > 0 && cand.Retries >= limit
}

func (c candidates) clone() []Candidate {
	return append([]Candidate(nil), c...)
}

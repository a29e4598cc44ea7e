package bitrix

import (
	"net/url"
	"strconv"
)

// Params is the tagged parameter set for a REST call. The service
// distinguishes three query shapes: plain scalar fields, a filter
// object expanded to one bracketed field per key, and a select array
// expanded to indexed bracketed fields. Order is a filter-shaped map
// for server-side sorting.
type Params struct {
	// Fields are scalar query parameters. Empty values are omitted.
	Fields map[string]string

	// Filter becomes filter[KEY]=value pairs. Empty values are omitted.
	Filter map[string]string

	// Select becomes select[0]=…, select[1]=… pairs.
	Select []string

	// Order becomes order[KEY]=direction pairs.
	Order map[string]string
}

// WithStart returns a copy of p with the pagination offset set. The
// receiver is not modified, so one Params value can seed every page of
// a listing call.
func (p Params) WithStart(start int) Params {
	fields := make(map[string]string, len(p.Fields)+1)
	for k, v := range p.Fields {
		fields[k] = v
	}
	fields["start"] = strconv.Itoa(start)
	p.Fields = fields
	return p
}

// Encode renders the parameter set as a canonical URL query string.
// url.Values sorts keys on encode, so semantically equal parameter
// sets always produce the same string; the cache key depends on this.
func (p Params) Encode() string {
	values := url.Values{}
	for k, v := range p.Fields {
		if k == "" || v == "" {
			continue
		}
		values.Set(k, v)
	}
	for k, v := range p.Filter {
		if k == "" || v == "" {
			continue
		}
		values.Set("filter["+k+"]", v)
	}
	for i, v := range p.Select {
		values.Set("select["+strconv.Itoa(i)+"]", v)
	}
	for k, v := range p.Order {
		if k == "" || v == "" {
			continue
		}
		values.Set("order["+k+"]", v)
	}
	return values.Encode()
}

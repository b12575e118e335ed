package pricing

import "sort"

// Vendor is a gift-card brand with its naira-per-dollar rate
type Vendor struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Rate int64  `json:"rate"`
}

var vendors = map[string]Vendor{
	"amazon":      {ID: "amazon", Name: "Amazon", Rate: 1450},
	"steam":       {ID: "steam", Name: "Steam", Rate: 1400},
	"apple":       {ID: "apple", Name: "Apple", Rate: 1350},
	"google":      {ID: "google", Name: "Google Play", Rate: 1300},
	"netflix":     {ID: "netflix", Name: "Netflix", Rate: 1250},
	"spotify":     {ID: "spotify", Name: "Spotify", Rate: 1250},
	"visa":        {ID: "visa", Name: "Visa Gift Card", Rate: 1500},
	"razer":       {ID: "razer", Name: "Razer Gold", Rate: 1380},
	"playstation": {ID: "playstation", Name: "PlayStation", Rate: 1390},
	"uber":        {ID: "uber", Name: "Uber", Rate: 1320},
}

func LookupVendor(id string) (Vendor, bool) {
	v, ok := vendors[id]
	return v, ok
}

// Vendors lists the catalog sorted by id.
func Vendors() []Vendor {
	out := make([]Vendor, 0, len(vendors))
	for _, v := range vendors {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

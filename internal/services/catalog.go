package services

import (
	"sort"
	"strings"

	"github.com/jpay/wallet/internal/models"
	"github.com/jpay/wallet/internal/pricing"
)

// NetworkJPay is the resolution network for wallet-to-wallet transfers
const NetworkJPay = "jpay"

type Bank struct {
	ID   string `json:"id"`
	Code string `json:"code"`
	Name string `json:"name"`
}

type Service struct {
	ID   models.ServiceID `json:"id"`
	Name string           `json:"name"`
}

type Plan struct {
	Name     string `json:"name"`
	Price    int64  `json:"price"` // kobo
	Validity string `json:"validity,omitempty"`
}

type Network struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Prefixes []string `json:"prefixes"`
	Plans    []Plan   `json:"dataPlans"`
}

type TVProvider struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Plans []Plan `json:"plans"`
}

// Catalog is the static reference data the payment flow prices and describes against
type Catalog struct {
	Services    []Service         `json:"services"`
	Banks       []Bank            `json:"banks"`
	Networks    []Network         `json:"networks"`
	TVProviders []TVProvider      `json:"tvProviders"`
	Discos      map[string]string `json:"discos"`
	Vendors     []pricing.Vendor  `json:"giftCardVendors"`
}

var walletServices = []Service{
	{ID: models.ServiceJPayTransfer, Name: "To J pay"},
	{ID: models.ServiceBankTransfer, Name: "To Bank"},
	{ID: models.ServiceAirtime, Name: "Airtime"},
	{ID: models.ServiceData, Name: "Data"},
	{ID: models.ServiceElectricity, Name: "Electricity"},
	{ID: models.ServiceTV, Name: "TV/Cable"},
	{ID: models.ServiceGiftCard, Name: "Gift Card"},
	{ID: models.ServiceAddFunds, Name: "Add Funds via Card"},
}

var externalBanks = []Bank{
	{ID: "access", Code: "044", Name: "Access Bank"},
	{ID: "first", Code: "011", Name: "First Bank"},
	{ID: "gtb", Code: "058", Name: "GTBank"},
	{ID: "uba", Code: "033", Name: "UBA"},
	{ID: "zenith", Code: "057", Name: "Zenith Bank"},
	{ID: "kuda", Code: "50211", Name: "Kuda MFB"},
	{ID: "opay", Code: "100004", Name: "Opay"},
}

func naira(s string) int64 { return models.MustNaira(s) }

var networks = []Network{
	{
		ID:       "mtn",
		Name:     "MTN",
		Prefixes: []string{"0803", "0806", "0703", "0706", "0810", "0813", "0814", "0816", "0903", "0906"},
		Plans: []Plan{
			{Name: "100MB", Price: naira("100"), Validity: "1 Day"},
			{Name: "1GB", Price: naira("300"), Validity: "1 Day"},
			{Name: "1.5GB", Price: naira("500"), Validity: "7 Days"},
			{Name: "6GB", Price: naira("1500"), Validity: "7 Days"},
			{Name: "4.5GB", Price: naira("2000"), Validity: "30 Days"},
			{Name: "10GB", Price: naira("3500"), Validity: "30 Days"},
		},
	},
	{
		ID:       "glo",
		Name:     "Glo",
		Prefixes: []string{"0805", "0807", "0705", "0811", "0815", "0905"},
		Plans: []Plan{
			{Name: "150MB", Price: naira("100"), Validity: "1 Day"},
			{Name: "1.2GB", Price: naira("500"), Validity: "14 Days"},
			{Name: "5.8GB", Price: naira("2000"), Validity: "30 Days"},
			{Name: "12GB", Price: naira("4000"), Validity: "30 Days"},
		},
	},
	{
		ID:       "airtel",
		Name:     "Airtel",
		Prefixes: []string{"0802", "0808", "0701", "0708", "0812", "0902", "0907"},
		Plans: []Plan{
			{Name: "100MB", Price: naira("100"), Validity: "1 Day"},
			{Name: "1GB", Price: naira("500"), Validity: "7 Days"},
			{Name: "5GB", Price: naira("2500"), Validity: "30 Days"},
			{Name: "11GB", Price: naira("4000"), Validity: "30 Days"},
		},
	},
	{
		ID:       "9mobile",
		Name:     "9mobile",
		Prefixes: []string{"0809", "0817", "0818", "0908", "0909"},
		Plans: []Plan{
			{Name: "100MB", Price: naira("100"), Validity: "1 Day"},
			{Name: "1GB", Price: naira("500"), Validity: "7 Days"},
			{Name: "4.5GB", Price: naira("2000"), Validity: "30 Days"},
			{Name: "11GB", Price: naira("4000"), Validity: "30 Days"},
		},
	},
}

var tvProviders = []TVProvider{
	{
		ID:   "dstv",
		Name: "DStv",
		Plans: []Plan{
			{Name: "Premium", Price: naira("29500")},
			{Name: "Compact Plus", Price: naira("19800")},
			{Name: "Compact", Price: naira("12500")},
			{Name: "Confam", Price: naira("7400")},
			{Name: "Yanga", Price: naira("6000")},
		},
	},
	{
		ID:   "gotv",
		Name: "GOtv",
		Plans: []Plan{
			{Name: "Supa Plus", Price: naira("16800")},
			{Name: "Supa", Price: naira("11400")},
			{Name: "Max", Price: naira("8500")},
			{Name: "Jolli", Price: naira("5800")},
			{Name: "Smallie", Price: naira("1900")},
		},
	},
}

const (
	discoAEDC   = "Abuja Electricity Distribution Company (AEDC)"
	discoBEDC   = "Benin Electricity Distribution Company (BEDC)"
	discoEEDC   = "Enugu Electricity Distribution Company (EEDC)"
	discoIBEDC  = "Ibadan Electricity Distribution Company (IBEDC)"
	discoJEDC   = "Jos Electricity Distribution Company (JEDC)"
	discoKAEDCO = "Kaduna Electricity Distribution Company (KAEDCO)"
	discoKEDCO  = "Kano Electricity Distribution Company (KEDCO)"
	discoPHEDC  = "Port Harcourt Electricity Distribution Company (PHEDC)"
	discoYEDC   = "Yola Electricity Distribution Company (YEDC)"
)

var discosByState = map[string]string{
	"Abia":        discoEEDC,
	"Adamawa":     discoYEDC,
	"Akwa Ibom":   discoPHEDC,
	"Anambra":     discoEEDC,
	"Bauchi":      discoJEDC,
	"Bayelsa":     discoPHEDC,
	"Benue":       discoJEDC,
	"Borno":       discoYEDC,
	"Cross River": discoPHEDC,
	"Delta":       discoBEDC,
	"Ebonyi":      discoEEDC,
	"Edo":         discoBEDC,
	"Ekiti":       discoBEDC,
	"Enugu":       discoEEDC,
	"Gombe":       discoJEDC,
	"Imo":         discoEEDC,
	"Jigawa":      discoKEDCO,
	"Kaduna":      discoKAEDCO,
	"Kano":        discoKEDCO,
	"Katsina":     discoKEDCO,
	"Kebbi":       discoKAEDCO,
	"Kogi":        discoAEDC,
	"Kwara":       discoIBEDC,
	"Lagos":       "Eko Electricity Distribution Company (EKEDC) / Ikeja Electric (IE)",
	"Nasarawa":    discoAEDC,
	"Niger":       discoAEDC,
	"Ogun":        discoIBEDC,
	"Ondo":        discoBEDC,
	"Osun":        discoIBEDC,
	"Oyo":         discoIBEDC,
	"Plateau":     discoJEDC,
	"Rivers":      discoPHEDC,
	"Sokoto":      discoKAEDCO,
	"Taraba":      discoYEDC,
	"Yobe":        discoYEDC,
	"Zamfara":     discoKAEDCO,
	"FCT":         discoAEDC,
}

type CatalogService struct{}

func NewCatalogService() *CatalogService {
	return &CatalogService{}
}

// Catalog returns a copy of the full reference data set
func (cs *CatalogService) Catalog() Catalog {
	discos := make(map[string]string, len(discosByState))
	for k, v := range discosByState {
		discos[k] = v
	}
	return Catalog{
		Services:    append([]Service(nil), walletServices...),
		Banks:       append([]Bank(nil), externalBanks...),
		Networks:    append([]Network(nil), networks...),
		TVProviders: append([]TVProvider(nil), tvProviders...),
		Discos:      discos,
		Vendors:     pricing.Vendors(),
	}
}

func (cs *CatalogService) Service(id models.ServiceID) (Service, bool) {
	for _, s := range walletServices {
		if s.ID == id {
			return s, true
		}
	}
	return Service{}, false
}

func (cs *CatalogService) Bank(id string) (Bank, bool) {
	for _, b := range externalBanks {
		if b.ID == id {
			return b, true
		}
	}
	return Bank{}, false
}

// DetectNetwork maps a phone number to its carrier by its four-digit prefix
func (cs *CatalogService) DetectNetwork(phone string) (Network, bool) {
	phone = strings.TrimSpace(phone)
	if len(phone) < 4 {
		return Network{}, false
	}
	prefix := phone[:4]
	for _, n := range networks {
		for _, p := range n.Prefixes {
			if p == prefix {
				return n, true
			}
		}
	}
	return Network{}, false
}

func (cs *CatalogService) DataPlan(networkID, planName string) (Plan, bool) {
	for _, n := range networks {
		if n.ID == networkID {
			return findPlan(n.Plans, planName)
		}
	}
	return Plan{}, false
}

func (cs *CatalogService) TVPlan(providerID, planName string) (Plan, bool) {
	for _, p := range tvProviders {
		if p.ID == providerID {
			return findPlan(p.Plans, planName)
		}
	}
	return Plan{}, false
}

func (cs *CatalogService) Disco(state string) (string, bool) {
	d, ok := discosByState[state]
	return d, ok
}

func (cs *CatalogService) States() []string {
	states := make([]string, 0, len(discosByState))
	for s := range discosByState {
		states = append(states, s)
	}
	sort.Strings(states)
	return states
}

func findPlan(plans []Plan, name string) (Plan, bool) {
	for _, p := range plans {
		if strings.EqualFold(p.Name, name) {
			return p, true
		}
	}
	return Plan{}, false
}

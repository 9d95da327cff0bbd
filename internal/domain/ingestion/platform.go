package ingestion

// Platform represents an external e-commerce platform
type Platform string

const (
	// PlatformShopify represents a Shopify storefront
	PlatformShopify Platform = "SHOPIFY"
	// PlatformSquare represents Square online/POS
	PlatformSquare Platform = "SQUARE"
	// PlatformEbay represents eBay marketplace
	PlatformEbay Platform = "EBAY"
	// PlatformEtsy represents Etsy marketplace
	PlatformEtsy Platform = "ETSY"
)

// IsValid returns true if the platform is valid
func (p Platform) IsValid() bool {
	switch p {
	case PlatformShopify, PlatformSquare, PlatformEbay, PlatformEtsy:
		return true
	default:
		return false
	}
}

// String returns the string representation of Platform
func (p Platform) String() string {
	return string(p)
}

// DisplayName returns a human-readable name for the platform
func (p Platform) DisplayName() string {
	switch p {
	case PlatformShopify:
		return "Shopify"
	case PlatformSquare:
		return "Square"
	case PlatformEbay:
		return "eBay"
	case PlatformEtsy:
		return "Etsy"
	default:
		return string(p)
	}
}

package cms

import "strings"

// Plan is a monthly subscription package. Price is in whole rand.
type Plan struct {
	Key         string
	Name        string
	Price       int64
	Currency    string
	Description string
	Features    []string
	Popular     bool
	PaymentURL  string
}

// Service is one entry of the services catalog.
type Service struct {
	Title       string
	Description string
	Features    []string
	Image       string
}

// Testimonial is a client review. Rating is on a 1..5 scale.
type Testimonial struct {
	Name     string
	Company  string
	Rating   int
	Text     string
	Result   string
	Verified bool
	Link     string
	Logo     string
	LogoAlt  string
}

// Stat is a headline number on the testimonials page.
type Stat struct {
	Number string
	Label  string
}

// Feature is a titled blurb used on the about and pricing pages.
type Feature struct {
	Title       string
	Description string
}

// Highlight is a home page feature block linking to a section.
type Highlight struct {
	Title       string
	Description string
	CTA         string
	Link        string
}

// Hours is one line of the business hours table.
type Hours struct {
	Days  string
	Hours string
}

const currencyZAR = "ZAR"

var plans = []Plan{
	{
		Key:         "basic",
		Name:        "Basic Package",
		Price:       2999,
		Currency:    currencyZAR,
		Description: "Perfect for SMEs needing essential marketing foundation",
		Features: []string{
			"Social media branding (Facebook & Instagram)",
			"1 tailored weekly post per platform",
			"Basic monitoring & engagement",
			"Content scheduling",
			"Partial online reputation management",
			"Monthly performance report",
		},
		PaymentURL: "https://paystack.shop/pay/reachright-basic",
	},
	{
		Key:         "standard",
		Name:        "Standard Package",
		Price:       3999,
		Currency:    currencyZAR,
		Description: "Ideal for expanding SMEs ready to grow their presence",
		Features: []string{
			"All Basic features included",
			"LinkedIn & Twitter (X) management",
			"2 tailored weekly posts per platform",
			"Engaging content creation & curation",
			"Hashtag research & implementation",
			"Performance tracking & detailed reporting",
			"Basic SEO services",
			"Email marketing setup",
		},
		Popular:    true,
		PaymentURL: "https://paystack.shop/pay/reachright-standard",
	},
	{
		Key:         "premium",
		Name:        "Premium Package",
		Price:       9999,
		Currency:    currencyZAR,
		Description: "Comprehensive solution for growing businesses",
		Features: []string{
			"All Standard features included",
			"Influencer partnership coordination",
			"Advanced competitor analysis",
			"Multi-platform campaign integration",
			"Advanced social listening & sentiment analysis",
			"Unlimited AI-generated images",
			"Priority support & consultation",
			"Custom strategy development",
			"Advanced SEO & content marketing",
		},
		PaymentURL: "https://paystack.shop/pay/reachright-premium",
	},
}

var services = []Service{
	{
		Title:       "Social Media Management",
		Description: "Complete social media solutions including profile setup, branding, content creation, scheduling, and community management across all major platforms.",
		Features:    []string{"Profile setup and branding", "Content creation and curation", "Post scheduling and automation", "Community management and engagement", "Social media monitoring"},
		Image:       "/assets/img/services/social-media-marketing.jpg",
	},
	{
		Title:       "Search Engine Optimization (SEO)",
		Description: "Boost your online visibility and drive organic traffic with our comprehensive SEO strategies tailored to your business.",
		Features:    []string{"Keyword research and analysis", "On-page optimization", "Technical SEO audits", "Link building strategies", "Local SEO optimization"},
		Image:       "/assets/img/services/seo-content.jpg",
	},
	{
		Title:       "Content Marketing",
		Description: "Engaging, high-quality content that tells your brand story and converts visitors into customers.",
		Features:    []string{"Blog writing and management", "Content strategy development", "Email marketing campaigns", "Video content creation", "Content calendar planning"},
		Image:       "/assets/img/services/seo-content.jpg",
	},
	{
		Title:       "Website Design & Development",
		Description: "Modern, responsive websites that not only look great but also drive conversions and provide excellent user experience.",
		Features:    []string{"Responsive web design", "E-commerce development", "Landing page optimization", "Website maintenance", "Performance optimization"},
		Image:       "/assets/img/services/branding-design.jpg",
	},
	{
		Title:       "Branding & Creative Design",
		Description: "Build a strong, memorable brand identity that resonates with your target audience and sets you apart from the competition.",
		Features:    []string{"Logo design and branding", "Brand guidelines development", "Marketing materials design", "Social media graphics", "Print and digital design"},
		Image:       "/assets/img/services/branding-design.jpg",
	},
	{
		Title:       "Influencer Partnerships",
		Description: "Connect with the right influencers to amplify your brand message and reach new audiences authentically.",
		Features:    []string{"Influencer identification and outreach", "Campaign strategy and management", "Partnership negotiations", "Performance tracking", "ROI measurement"},
		Image:       "/assets/img/services/social-media-marketing.jpg",
	},
	{
		Title:       "Advanced Social Listening",
		Description: "Monitor your brand's online presence and gain valuable insights into customer sentiment and market trends.",
		Features:    []string{"Brand mention monitoring", "Sentiment analysis", "Competitor tracking", "Crisis management", "Market research insights"},
		Image:       "/assets/img/services/seo-content.jpg",
	},
	{
		Title:       "Competitor Analysis",
		Description: "Stay ahead of the competition with comprehensive analysis of their strategies, strengths, and opportunities.",
		Features:    []string{"Competitive landscape analysis", "Strategy benchmarking", "Gap identification", "Market positioning insights", "Opportunity mapping"},
		Image:       "/assets/img/services/seo-content.jpg",
	},
}

var testimonials = []Testimonial{
	{
		Name:     "Caroline Beer",
		Company:  "Coastal and Environmental Services",
		Rating:   5,
		Text:     "ReachRight Marketing transformed our online presence. Their expertise in social media management and SEO helped us reach new customers we never thought possible. Highly recommend!",
		Result:   "300% increase in online engagement",
		Verified: true,
		Link:     "https://www.cesnet.co.za/",
		Logo:     "/assets/img/logos/CESlogo.png",
		LogoAlt:  "CES (Coastal and Environmental Services) logo",
	},
	{
		Name:    "Sarah Mitchell",
		Company: "Mitchell & Associates",
		Rating:  5,
		Text:    "Working with ReachRight has been a game-changer for our law firm. Their professional approach and understanding of our industry helped us build trust with potential clients online.",
		Result:  "80% increase in qualified leads",
	},
	{
		Name:    "David Thompson",
		Company: "Thompson Construction",
		Rating:  5,
		Text:    "As a small construction company, we thought digital marketing was too complex for us. ReachRight made it simple and affordable. Our phone hasn't stopped ringing since we started!",
		Result:  "140% increase in project inquiries",
	},
	{
		Name:    "Samantha Price",
		Company: "Seaside Bistro",
		Rating:  4,
		Text:    "The social media content ReachRight creates for our restaurant is absolutely amazing. Our followers love the posts, and we've seen a significant increase in reservations and takeout orders.",
		Result:  "120% increase in social media followers",
	},
	{
		Name:    "James Wilson",
		Company: "Wilson Tech Solutions",
		Rating:  5,
		Text:    "ReachRight's technical expertise and understanding of B2B marketing helped us establish credibility in the tech industry. Their LinkedIn strategy alone brought us several new enterprise clients.",
		Result:  "200% increase in LinkedIn engagement",
	},
	{
		Name:    "Lisa Chen",
		Company: "Chen Beauty Salon",
		Rating:  5,
		Text:    "The branding work ReachRight did for us was exceptional. They captured our salon's personality perfectly, and the new brand identity has attracted so many new clients.",
		Result:  "80% increase in new client bookings",
	},
}

var stats = []Stat{
	{Number: "20+", Label: "Happy Clients"},
	{Number: "95%", Label: "Client Retention Rate"},
	{Number: "150%", Label: "Average Growth"},
	{Number: "24/7", Label: "Support Available"},
}

var features = []Feature{
	{Title: "Tailored Marketing Solutions", Description: "Customized strategies designed specifically for your business needs and goals."},
	{Title: "Affordable for All Business Sizes", Description: "From sole proprietorships to enterprises, we have packages that fit every budget."},
	{Title: "Expertise in Digital Marketing", Description: "Specialized knowledge in social media, SEO, branding, and content creation."},
	{Title: "Transparent Communication", Description: "Clear reporting, honest feedback, and open communication throughout our partnership."},
}

var values = []Feature{
	{Title: "Relationship-Driven", Description: "We build lasting partnerships with our clients, focusing on long-term success rather than quick wins."},
	{Title: "Results-Focused", Description: "Every strategy we implement is designed to deliver measurable results that impact your bottom line."},
	{Title: "Innovation", Description: "We stay ahead of digital trends to ensure your marketing strategies remain cutting-edge and effective."},
}

var faqs = []Feature{
	{Title: "What's included in setup?", Description: "All packages include complete account setup, initial strategy consultation, and onboarding to ensure you're ready to see results from day one."},
	{Title: "Can I upgrade or downgrade?", Description: "Absolutely! You can change your package at any time to better suit your business needs as you grow."},
	{Title: "What platforms do you manage?", Description: "We manage Facebook, Instagram, LinkedIn, Twitter/X, and can expand to other platforms based on your business needs."},
	{Title: "How do you measure success?", Description: "We provide detailed monthly reports covering engagement, reach, growth, and ROI metrics tailored to your business objectives."},
}

var highlights = []Highlight{
	{Title: "Thrive with Innovative Marketing", Description: "Unlock the potential of your business with our expert marketing solutions and propel your brand to new heights.", CTA: "Read More Here", Link: "/services"},
	{Title: "Our Pricing", Description: "Accessible and affordable packages catering to sole proprietorships, SMEs, and enterprises alike.", CTA: "View Plans", Link: "/pricing"},
	{Title: "Contact Us", Description: "Ready to get started? Get in touch via email, phone, or WhatsApp for a free consultation.", CTA: "Get in Touch", Link: "/contact"},
}

var hours = []Hours{
	{Days: "Monday - Friday", Hours: "8:00 AM - 6:00 PM"},
	{Days: "Saturday", Hours: "10:00 AM - 2:00 PM"},
	{Days: "Sunday", Hours: "Closed"},
}

// Package options offered on the contact form, beyond the plans.
const (
	PackageCustom  = "Custom Package"
	PackageGeneral = "General Inquiry"
)

// Plans returns the subscription packages in display order.
func Plans() []Plan {
	out := make([]Plan, len(plans))
	for i, p := range plans {
		p.Features = append([]string(nil), p.Features...)
		out[i] = p
	}
	return out
}

// PlanByKey looks up a plan by its key ("basic", "standard", "premium"),
// ignoring case.
func PlanByKey(key string) (Plan, bool) {
	key = strings.ToLower(strings.TrimSpace(key))
	for _, p := range Plans() {
		if p.Key == key {
			return p, true
		}
	}
	return Plan{}, false
}

// Services returns the services catalog.
func Services() []Service {
	out := make([]Service, len(services))
	for i, s := range services {
		s.Features = append([]string(nil), s.Features...)
		out[i] = s
	}
	return out
}

// Testimonials returns client reviews in display order.
func Testimonials() []Testimonial {
	return append([]Testimonial(nil), testimonials...)
}

// AverageRating returns the mean testimonial rating, or 0 when there are none.
func AverageRating() float64 {
	if len(testimonials) == 0 {
		return 0
	}
	sum := 0
	for _, t := range testimonials {
		sum += t.Rating
	}
	return float64(sum) / float64(len(testimonials))
}

// Stats returns the testimonials page headline numbers.
func Stats() []Stat { return append([]Stat(nil), stats...) }

// Features returns the "why choose us" list on the about page.
func Features() []Feature { return append([]Feature(nil), features...) }

// Values returns the about page values.
func Values() []Feature { return append([]Feature(nil), values...) }

// FAQs returns the pricing page questions.
func FAQs() []Feature { return append([]Feature(nil), faqs...) }

// Highlights returns the home page feature blocks.
func Highlights() []Highlight { return append([]Highlight(nil), highlights...) }

// BusinessHours returns the opening hours shown on the contact page.
func BusinessHours() []Hours { return append([]Hours(nil), hours...) }

// Packages lists the contact form's package options.
func Packages() []string {
	out := make([]string, 0, len(plans)+2)
	for _, p := range plans {
		out = append(out, p.Name)
	}
	return append(out, PackageCustom, PackageGeneral)
}

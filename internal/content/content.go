// Package content はマーケティングサイトの静的ページコンテンツを提供する。
//
// コンテンツはビルド時に埋め込まれた読み取り専用データで、
// データベースを経由せずAPIから配信される。
package content

import "github.com/seniortech/backend/internal/model"

// Service は静的ページコンテンツへの読み取りアクセスを提供する。
// 返されるスライスは毎回コピーされるため、呼び出し側で変更しても安全。
type Service struct{}

// NewService はServiceを生成する。
func NewService() *Service {
	return &Service{}
}

// homeHighlights はトップページのサービス概要カード。
var homeHighlights = []model.HomeHighlight{
	{
		Title:       "Custom Support",
		Description: "Personalized troubleshooting for your computer, phone, tablet, and smart home devices.",
	},
	{
		Title:       "Installation & Setup",
		Description: "Hassle-free setup of new devices, Wi-Fi, printers, smart TVs, and more.",
	},
	{
		Title:       "Patient Coaching",
		Description: "One-on-one guidance on using specific apps, online safety, and digital communication.",
	},
	{
		Title:       "Comprehensive Training",
		Description: "Structured lessons to master essential tech skills like video calls, email, and online banking.",
	},
}

// serviceOfferings はサービス紹介ページの詳細項目。
var serviceOfferings = []model.ServiceOffering{
	{
		Slug:        "custom-tech-support",
		Title:       "Custom Tech Support",
		Description: "Experiencing a glitch? Need help understanding an error message? Our custom support service provides on-demand troubleshooting and problem-solving for all your devices. We'll patiently walk you through the solutions, ensuring you understand every step.",
		Details: []string{
			"Resolve frustrating computer issues (slowdowns, viruses, software problems)",
			"Troubleshoot smartphone and tablet glitches",
			"Fix smart home device connectivity issues",
			"Get clear, simple explanations for complex problems",
			"On-site or remote assistance available",
		},
	},
	{
		Slug:        "installation-device-setup",
		Title:       "Installation & Device Setup",
		Description: "Getting a new device should be exciting, not stressful! We handle all the technical aspects of setting up your new computer, phone, printer, Wi-Fi, smart TV, or any other gadget. We ensure everything is connected, configured, and ready for you to use.",
		Details: []string{
			"New computer setup and data transfer",
			"Printer installation and troubleshooting",
			"Home Wi-Fi network setup and optimization",
			"Smart TV and streaming device configuration",
			"Smart home device installation (thermostats, lights, speakers)",
		},
	},
	{
		Slug:        "patient-coaching",
		Title:       "Patient 1-on-1 Coaching",
		Description: "Want to learn how to use a specific app, manage your photos, or stay safe online? Our coaching sessions are tailored to your interests and skill level. We provide gentle, step-by-step guidance in a comfortable, pressure-free environment.",
		Details: []string{
			"Mastering video calls (Zoom, FaceTime, Skype)",
			"Organizing and sharing digital photos",
			"Understanding online safety and privacy",
			"Using social media to connect with family and friends",
			"Navigating specific apps and software",
		},
	},
	{
		Slug:        "comprehensive-training",
		Title:       "Comprehensive Tech Training",
		Description: "Build foundational tech skills with our structured training programs. Whether you're new to computers or want to enhance your digital literacy, our courses cover essential topics to help you feel more confident and independent online.",
		Details: []string{
			"Email basics and advanced usage",
			"Safe online banking and shopping",
			"Internet browsing and information searching",
			"Understanding your smartphone or tablet",
			"Managing digital documents and files",
		},
	},
}

// teamMembers は会社紹介ページのスタッフ一覧。
var teamMembers = []model.TeamMember{
	{
		Name:  "Jane Doe",
		Title: "Founder & Lead Technician",
		Bio:   "With over 15 years in IT support and a passion for community service, Jane founded SeniorTech Solutions to provide compassionate tech help to seniors.",
	},
	{
		Name:  "John Smith",
		Title: "Senior Tech Coach",
		Bio:   "John specializes in making complex tech simple. His patient teaching style helps seniors master new skills with ease and confidence.",
	},
}

// faqItems はよくある質問の一覧。
var faqItems = []model.FAQItem{
	{
		Question: "What types of devices do you support?",
		Answer:   "We support a wide range of devices including desktop computers (Windows & Mac), laptops, smartphones (iPhone & Android), tablets (iPad & Android), printers, Wi-Fi routers, smart TVs, streaming devices (Roku, Apple TV, Fire Stick), and smart home devices (thermostats, smart speakers, smart lights).",
	},
	{
		Question: "How do I book an appointment?",
		Answer:   "You can book an appointment by filling out the contact form on our 'Contact Us' page, or by calling us directly at the phone number listed on our site. We'll get back to you promptly to schedule a convenient time.",
	},
	{
		Question: "Do you offer in-home service?",
		Answer:   "Yes, our primary service model is in-home support, coaching, and training. We believe this provides the most comfortable and effective learning environment for our senior clients. We also offer remote support for certain issues.",
	},
	{
		Question: "What are your service areas?",
		Answer:   "We proudly serve the greater Philadelphia metropolitan area, including specific counties in Pennsylvania, New Jersey, and Delaware. Please contact us to confirm if your location is within our service range.",
	},
	{
		Question: "How much do your services cost?",
		Answer:   "Our pricing is transparent and competitive. We offer hourly rates for custom support and discounted packages for coaching and training sessions. Please visit our 'Services' page or contact us for a detailed quote based on your specific needs.",
	},
	{
		Question: "Are your technicians background-checked?",
		Answer:   "Absolutely. All our technicians and coaches undergo thorough background checks and are trained to provide respectful, patient, and secure service. Your safety and peace of mind are our top priorities.",
	},
	{
		Question: "What if I'm not satisfied with the service?",
		Answer:   "Your satisfaction is guaranteed. If you're not completely happy with our service, please let us know immediately. We are committed to resolving any issues and ensuring you receive the support you need.",
	},
}

// contactInfo は問い合わせページの連絡先情報。
var contactInfo = model.ContactInfo{
	Phone:       "(555) 123-4567",
	Email:       "info@seniortechsolutions.com",
	ServiceArea: "Greater Philadelphia metropolitan area (PA, NJ, DE)",
	Hours:       "Monday - Friday, 9:00 AM - 5:00 PM EST",
}

// HomeHighlights はトップページのサービス概要カードを返す。
func (s *Service) HomeHighlights() []model.HomeHighlight {
	out := make([]model.HomeHighlight, len(homeHighlights))
	copy(out, homeHighlights)
	return out
}

// ServiceOfferings はサービス紹介ページの全項目を返す。
func (s *Service) ServiceOfferings() []model.ServiceOffering {
	out := make([]model.ServiceOffering, len(serviceOfferings))
	copy(out, serviceOfferings)
	return out
}

// ServiceOfferingBySlug はスラッグで1件のサービスを返す。
// 見つからない場合はnilを返す。
func (s *Service) ServiceOfferingBySlug(slug string) *model.ServiceOffering {
	for i := range serviceOfferings {
		if serviceOfferings[i].Slug == slug {
			offering := serviceOfferings[i]
			return &offering
		}
	}
	return nil
}

// TeamMembers は会社紹介ページのスタッフ一覧を返す。
func (s *Service) TeamMembers() []model.TeamMember {
	out := make([]model.TeamMember, len(teamMembers))
	copy(out, teamMembers)
	return out
}

// FAQ はよくある質問の一覧を返す。
func (s *Service) FAQ() []model.FAQItem {
	out := make([]model.FAQItem, len(faqItems))
	copy(out, faqItems)
	return out
}

// Contact は連絡先情報を返す。
func (s *Service) Contact() model.ContactInfo {
	return contactInfo
}

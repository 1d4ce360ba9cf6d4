package catalog

import "github.com/qualityveda/attendance-hub/internal/domain"

// First-run defaults. Applied once when no persisted catalog exists; after
// that the persisted collections are authoritative.
func defaultLabs() []domain.Lab {
	return []domain.Lab{
		{ID: "lab1", Name: "Qualityveda (A unit of Sirajex Diagnostics Pvt. Ltd.", Location: "206, 3rd Floor, Silver Home - 2, opposite 14th Avenue, Greater Noida, Ghaziabad, Uttar Pradesh 201301"},
		{ID: "lab2", Name: "Thyrovision Laboratories", Location: "F 126, Ground Floor, Katwaria Sarai, Main Road, Shaheed Jeet Singh Marg, New Delhi, Delhi 110016"},
		{ID: "lab3", Name: "Dr Lalchandani Labs", Location: "M-20, Greater Kailash-1, M Block, Greater Kailash I, Greater Kailash, New Delhi, Delhi 110048"},
		{ID: "lab4", Name: "ANVENTA DIAGNOSTICS", Location: "GATE NO. 5, Pocket - F, MIG FLATS, 94-A, opposite GTB HOSPITAL, GTB Enclave, Dilshad Garden, Delhi, 110095"},
		{ID: "lab5", Name: "Avantika Pathology Labs", Location: "Plot No- 367 137 Peepal Chowk, near to Swarn Jayanti Park Road, Niti Khand 2, Indirapuram, Ghaziabad, Uttar Pradesh 201014"},
		{ID: "lab6", Name: "IQ Diagnostics Pvt Ltd", Location: "IQ Diagnostics, BLK-03 & 04, Sector 121, Noida, Uttar Pradesh 201307"},
		{ID: "lab7", Name: "Microbe Diagnostics Laboratories Pvt Ltd", Location: "819 - P, 1st Floor, Sector 47, Off, Netaji Subhash Marg, Gurugram, Haryana 122018"},
		{ID: "lab8", Name: "DGChem Labs", Location: "2nd Floor, US Complex, 231, Mathura Rd, opp. Apollo Hospital, Jasola Vihar, New Delhi, Delhi 110076"},
		{ID: "lab9", Name: "Thyrovision Labs x Cronus Multi Speciality Hospital", Location: "100 Feet Rd, Phase 1, Chhatarpur Enclave Phase 2, Chattarpur Enclave, Chhatarpur, New Delhi, Delhi 110074"},
		{ID: "lab10", Name: "PROTIME LABS (A UNIT OF PROTIME HEALTH LLP)", Location: "DDA PLOT 454, in front of gupta realtors, Sector 19, Pocket 1, Dwarka, New Delhi, Delhi 110075"},
		{ID: "lab11", Name: "Cee Dee Diagnostics", Location: "Rz-88/J Main Road Raj Nagar, Part-1, Palam, Delhi, 110077"},
		{ID: "lab12", Name: "NDNC Diagnostics", Location: "A-1/87, SEWAK PARK, DWARKA MOR, NEAR N.S. INSTITUTE OF TECHNOLOGY, NEW DELHI, New, Delhi, 110059"},
		{ID: "lab13", Name: "Jyoti Dental & Diagnostic", Location: "Flat A1, Balaji Apartment, Lohia ParkPark, 5/12, near Dr. Ram Manohar, Sector 5, Rajendra Nagar, Ghaziabad, Uttar Pradesh 201005"},
		{ID: "lab14", Name: "OnePlus Ultrasound Lab", Location: "47, Harsh Vihar, Pitampura, Delhi, 110034"},
		{ID: "lab15", Name: "SSAKHI DIAGNOSTICS & HEALTHCARE, A UNIT OF SATNAM SAKHI HEALTH SERVICES (OPC) PVT. LTD", Location: "W-4, Metro Sta on Shadipur, Gate no 4, adjoining Shadipur, West Patel Nagar, New Delhi 110008"},
		{ID: "lab16", Name: "TRUE PATH DIAGNOSTICS PVT LTD", Location: "Manohar Park, East Punjabi Bagh, Punjabi Bagh, Delhi, 110026"},
		{ID: "lab17", Name: "Oncoplus Path Lab", Location: "B-73 & B-75, Bhishma Pitamah Marg, Block B, Defence Colony, New Delhi 110024"},
		{ID: "lab18", Name: "Dr Anjana Central Diagnostics Pvt Ltd", Location: "1st Floor Sumbha Complex, West Boring Canal Rd, Anandpuri, Patna, Bihar 800001"},
	}
}

func defaultTrainings() []domain.Training {
	return []domain.Training{
		{ID: "training1", Name: "BMW"},
		{ID: "training2", Name: "IQC & EQA"},
		{ID: "training3", Name: "NSI"},
		{ID: "training4", Name: "Fire"},
		{ID: "training5", Name: "QI, ILC & Critical Alert"},
		{ID: "training6", Name: "Phlebotomy"},
		{ID: "training7", Name: "Ethics"},
		{ID: "training8", Name: "Internal Audit & MRM"},
		{ID: "training9", Name: "Laboratory Safety & Spill"},
		{ID: "training10", Name: "EQAS & PT Outlier"},
		{ID: "training11", Name: "Personnel Training & Environment"},
		{ID: "training12", Name: "Condition"},
		{ID: "training13", Name: "General Questions for lab"},
		{ID: "training14", Name: "Autoclave"},
		{ID: "training15", Name: "ISO 15189:2022"},
	}
}

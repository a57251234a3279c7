package clinicapi

import "encoding/json"

// NamedCode is a clinic or doctor entry as returned by the Lookup endpoint.
type NamedCode struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// lookupResponse is the upstream body for Lookup Type 1 and 2.
type lookupResponse struct {
	Success bool        `json:"success"`
	Clinics []NamedCode `json:"clinics"`
	Doctors []NamedCode `json:"doctors"`
}

// ClinicsResult is the normalized outcome of GetClinics. Serialized verbatim
// as tool output, so the JSON keys follow the upstream contract.
type ClinicsResult struct {
	Success bool        `json:"success"`
	Clinics []NamedCode `json:"clinics,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// DoctorsResult is the normalized outcome of GetDoctors.
type DoctorsResult struct {
	Success bool        `json:"success"`
	Doctors []NamedCode `json:"doctors,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// PatientResult is the normalized outcome of CheckPatientExists.
type PatientResult struct {
	Success      bool            `json:"success"`
	Exists       bool            `json:"exists"`
	PatientData  json.RawMessage `json:"patient_data,omitempty"`
	RawResponse  string          `json:"raw_response,omitempty"`
	Response     string          `json:"response,omitempty"`
	MobileNumber string          `json:"mobile_number"`
	Error        string          `json:"error,omitempty"`
}

// AppointmentsResult is the normalized outcome of GetPatientAppointments.
type AppointmentsResult struct {
	Success      bool            `json:"success"`
	Exists       bool            `json:"exists"`
	Message      string          `json:"message,omitempty"`
	Appointments json.RawMessage `json:"appointments"`
	PatientData  json.RawMessage `json:"patient_data,omitempty"`
	MobileNumber string          `json:"mobile_number"`
	Error        string          `json:"error,omitempty"`
}

// AlternativeDate is a date other than the requested one that still has
// open slots. Availability responses list them sorted ascending by date.
type AlternativeDate struct {
	Date           string            `json:"date"`
	AvailableSlots int               `json:"available_slots"`
	Slots          []json.RawMessage `json:"slots"`
}

// AvailabilityResult is the normalized outcome of CheckDoctorAvailability.
// Slots carry the raw upstream slot objects so the model sees every field.
type AvailabilityResult struct {
	Available        bool              `json:"available"`
	AvailableSlots   int               `json:"available_slots"`
	Date             string            `json:"date,omitempty"`
	DoctorCode       string            `json:"doctor_code,omitempty"`
	Slots            []json.RawMessage `json:"slots,omitempty"`
	SlotsInfo        string            `json:"slots_info,omitempty"`
	AlternativeDates []AlternativeDate `json:"alternative_dates,omitempty"`
	Details          string            `json:"details,omitempty"`
	Message          string            `json:"message,omitempty"`
	Error            string            `json:"error,omitempty"`
}

// BookingRequest carries every field the InsertAppointment endpoint accepts.
// PatAge and DrCodeText are optional and may stay empty.
type BookingRequest struct {
	AppDate        string `json:"app_Date"`
	SlotID         string `json:"slot_id"`
	PatCode        string `json:"pat_code"`
	PatNameAr      string `json:"pat_nameAr"`
	IdentityNo     string `json:"identity_no"`
	MobileNo       string `json:"mobile_no"`
	PatAge         string `json:"pat_age"`
	DrCode         string `json:"dr_code"`
	DrCodeText     string `json:"dr_codeText"`
	ClinicDeptCode string `json:"CinicDept_Code"`
}

// BookingResult is the normalized outcome of BookAppointment.
type BookingResult struct {
	Success            bool            `json:"success"`
	Message            string          `json:"message,omitempty"`
	AppointmentDetails json.RawMessage `json:"appointment_details,omitempty"`
	RawResponse        string          `json:"raw_response,omitempty"`
	Response           string          `json:"response,omitempty"`
	BookingData        BookingRequest  `json:"booking_data"`
	Error              string          `json:"error,omitempty"`
}

// CancellationResult is the normalized outcome of CancelAppointment.
type CancellationResult struct {
	Success             bool            `json:"success"`
	Message             string          `json:"message,omitempty"`
	CancellationDetails json.RawMessage `json:"cancellation_details,omitempty"`
	RawResponse         string          `json:"raw_response,omitempty"`
	Response            string          `json:"response,omitempty"`
	AppointmentID       string          `json:"appointment_id"`
	Error               string          `json:"error,omitempty"`
}

// RegistrationRequest carries the patient registration payload. The five
// optional fields (father/middle names and image) may stay empty.
type RegistrationRequest struct {
	FirstNameAr  string `json:"Patient_FirstName_Ar"`
	FatherNameAr string `json:"Patient_FatherName_Ar"`
	MiddleNameAr string `json:"Patient_MiddleName_Ar"`
	LastNameAr   string `json:"Patient_LastName_Ar"`
	NameAr       string `json:"Patient_Name_Ar"`
	FirstNameEn  string `json:"Patient_FirstName_En"`
	FatherNameEn string `json:"Patient_FatherName_En"`
	MiddleNameEn string `json:"Patient_MiddleName_En"`
	LastNameEn   string `json:"Patient_LastName_En"`
	NameEn       string `json:"Patient_Name_En"`
	Sex          string `json:"Sex"`
	BirthDate    string `json:"Patient_BirthDate"`
	Mobile       string `json:"Patient_Mobile"`
	UserName     string `json:"User_Name"`
	Password     string `json:"Password"`
	Image        string `json:"IMG"`
	Phone        string `json:"Patient_Phone"`
	Email        string `json:"Email"`
	CountryCode  string `json:"CountryCode"`
	IDNumber     string `json:"ID_Number"`
}

// RegistrationResult is the normalized outcome of RegisterPatient.
type RegistrationResult struct {
	Success          bool                `json:"success"`
	Message          string              `json:"message,omitempty"`
	PatientDetails   json.RawMessage     `json:"patient_details,omitempty"`
	RawResponse      string              `json:"raw_response,omitempty"`
	Response         string              `json:"response,omitempty"`
	RegistrationData RegistrationRequest `json:"registration_data"`
	Error            string              `json:"error,omitempty"`
}

// availabilityResponse mirrors the upstream GetPatientAppointments body:
// one entry per date, each carrying that day's slot list.
type availabilityResponse struct {
	DoctorAppointments []availabilityDay `json:"DoctorAppointments"`
}

type availabilityDay struct {
	Date  string            `json:"Date"`
	Slots []json.RawMessage `json:"DoctorAppointments"`
}

// slotMeta is the subset of a slot object needed to decide whether it is
// bookable and to render its time range.
type slotMeta struct {
	Period       string `json:"Appo_Period"`
	IsReserved   bool   `json:"IsReserved"`
	IsClosed     bool   `json:"isclosed"`
	IsDoctorOpen bool   `json:"ISDr_Shift"`
}

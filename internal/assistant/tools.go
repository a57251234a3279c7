package assistant

import (
	openai "github.com/sashabaranov/go-openai"
)

// toolKind enumerates every tool the model is allowed to call. Dispatch is
// closed over this set; any other name the model invents gets an error
// result instead of reaching the backend.
type toolKind int

const (
	toolUnknown toolKind = iota
	toolGetClinics
	toolGetDoctors
	toolCheckPatientExists
	toolGetPatientAppointments
	toolCheckDoctorAvailability
	toolBookAppointment
	toolCancelAppointment
	toolRegisterPatient
)

func toolKindFor(name string) toolKind {
	switch name {
	case "get_clinics":
		return toolGetClinics
	case "get_doctors":
		return toolGetDoctors
	case "check_patient_exists":
		return toolCheckPatientExists
	case "get_patient_appointments":
		return toolGetPatientAppointments
	case "check_doctor_availability":
		return toolCheckDoctorAvailability
	case "book_appointment":
		return toolBookAppointment
	case "cancel_appointment":
		return toolCancelAppointment
	case "register_patient":
		return toolRegisterPatient
	default:
		return toolUnknown
	}
}

// toolRegistry is the fixed tool surface advertised on every model call.
// Parameter schemas mirror the clinic backend's field names, including its
// spelling of cinicDept_code.
var toolRegistry = []openai.Tool{
	{
		Type: openai.ToolTypeFunction,
		Function: &openai.FunctionDefinition{
			Name:        "get_clinics",
			Description: "Get a list of available clinics in the branch",
		},
	},
	{
		Type: openai.ToolTypeFunction,
		Function: &openai.FunctionDefinition{
			Name:        "get_doctors",
			Description: "Get a list of doctors in a clinic",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"clinic_code": map[string]any{
						"type":        "string",
						"description": "The code of the clinic, e.g. SPLDRM for Dental Clinic",
					},
				},
				"required": []string{"clinic_code"},
			},
		},
	},
	{
		Type: openai.ToolTypeFunction,
		Function: &openai.FunctionDefinition{
			Name:        "check_patient_exists",
			Description: "Check if a patient has an existing account using their mobile number and get their upcoming appointments",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"mobile_number": map[string]any{
						"type":        "string",
						"description": "The mobile number to check for an existing patient account",
					},
				},
				"required": []string{"mobile_number"},
			},
		},
	},
	{
		Type: openai.ToolTypeFunction,
		Function: &openai.FunctionDefinition{
			Name:        "get_patient_appointments",
			Description: "Get all upcoming appointments for a patient using their mobile number",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"mobile_number": map[string]any{
						"type":        "string",
						"description": "The mobile number of the patient to get appointments for",
					},
				},
				"required": []string{"mobile_number"},
			},
		},
	},
	{
		Type: openai.ToolTypeFunction,
		Function: &openai.FunctionDefinition{
			Name:        "check_doctor_availability",
			Description: "Check if a specific doctor is available for appointments on a specific date must set date and month and day",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"doctor_code": map[string]any{
						"type":        "string",
						"description": "The code of the doctor to check availability for, e.g. 14",
					},
					"date": map[string]any{
						"type":        "string",
						"description": "The date to check availability for in YYYY-MM-DD format. If not specified, uses today's date.",
					},
				},
				"required": []string{"doctor_code"},
			},
		},
	},
	{
		Type: openai.ToolTypeFunction,
		Function: &openai.FunctionDefinition{
			Name:        "book_appointment",
			Description: "Book an appointment for a patient",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"app_date": map[string]any{
						"type":        "string",
						"description": "Appointment date in YYYY-MM-DD format",
					},
					"slot_id": map[string]any{
						"type":        "string",
						"description": "Time slot in HH:MM:SS-HH:MM:SS format, e.g. 08:00:00-08:15:00",
					},
					"pat_code": map[string]any{
						"type":        "string",
						"description": "Patient code, e.g. 340585",
					},
					"pat_nameAr": map[string]any{
						"type":        "string",
						"description": "Patient name in Arabic, e.g. YOSAF SOLTAN YOSAF",
					},
					"identity_no": map[string]any{
						"type":        "string",
						"description": "Identity number, e.g. 1",
					},
					"mobile_no": map[string]any{
						"type":        "string",
						"description": "Mobile number, e.g. 0500876733",
					},
					"pat_age": map[string]any{
						"type":        "string",
						"description": "Patient age (optional)",
					},
					"dr_code": map[string]any{
						"type":        "string",
						"description": "Doctor code, e.g. 36",
					},
					"dr_codeText": map[string]any{
						"type":        "string",
						"description": "Doctor code text (optional)",
					},
					"cinicDept_code": map[string]any{
						"type":        "string",
						"description": "Clinic department code, e.g. SPLOPT",
					},
				},
				"required": []string{
					"app_date", "slot_id", "pat_code", "pat_nameAr",
					"identity_no", "mobile_no", "dr_code", "cinicDept_code",
				},
			},
		},
	},
	{
		Type: openai.ToolTypeFunction,
		Function: &openai.FunctionDefinition{
			Name:        "cancel_appointment",
			Description: "Cancel an existing appointment by appointment ID",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"appo_id": map[string]any{
						"type":        "string",
						"description": "The appointment ID to cancel, e.g. 123456",
					},
				},
				"required": []string{"appo_id"},
			},
		},
	},
	{
		Type: openai.ToolTypeFunction,
		Function: &openai.FunctionDefinition{
			Name:        "register_patient",
			Description: "Register a new patient in the system",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"patient_firstName_ar": map[string]any{
						"type":        "string",
						"description": "Patient first name in Arabic",
					},
					"patient_lastName_ar": map[string]any{
						"type":        "string",
						"description": "Patient last name in Arabic",
					},
					"patient_name_ar": map[string]any{
						"type":        "string",
						"description": "Patient full name in Arabic",
					},
					"patient_firstName_en": map[string]any{
						"type":        "string",
						"description": "Patient first name in English",
					},
					"patient_lastName_en": map[string]any{
						"type":        "string",
						"description": "Patient last name in English",
					},
					"patient_name_en": map[string]any{
						"type":        "string",
						"description": "Patient full name in English",
					},
					"sex": map[string]any{
						"type":        "string",
						"description": "Patient gender: Male or Female",
					},
					"patient_birthDate": map[string]any{
						"type":        "string",
						"description": "Patient birth date in YYYY-MM-DD format",
					},
					"patient_mobile": map[string]any{
						"type":        "string",
						"description": "Patient mobile number",
					},
					"user_name": map[string]any{
						"type":        "string",
						"description": "Username for patient portal",
					},
					"password": map[string]any{
						"type":        "string",
						"description": "Password for patient portal",
					},
					"patient_phone": map[string]any{
						"type":        "string",
						"description": "Patient phone number",
					},
					"email": map[string]any{
						"type":        "string",
						"description": "Patient email address",
					},
					"countryCode": map[string]any{
						"type":        "string",
						"description": "Country code, e.g. 001",
					},
					"id_number": map[string]any{
						"type":        "string",
						"description": "Patient ID number",
					},
					"patient_fatherName_ar": map[string]any{
						"type":        "string",
						"description": "Patient father name in Arabic (optional)",
					},
					"patient_middleName_ar": map[string]any{
						"type":        "string",
						"description": "Patient middle name in Arabic (optional)",
					},
					"patient_fatherName_en": map[string]any{
						"type":        "string",
						"description": "Patient father name in English (optional)",
					},
					"patient_middleName_en": map[string]any{
						"type":        "string",
						"description": "Patient middle name in English (optional)",
					},
					"img": map[string]any{
						"type":        "string",
						"description": "Patient image URL (optional)",
					},
				},
				"required": []string{
					"patient_firstName_ar", "patient_lastName_ar", "patient_name_ar",
					"patient_firstName_en", "patient_lastName_en", "patient_name_en",
					"sex", "patient_birthDate", "patient_mobile", "user_name",
					"password", "patient_phone", "email", "countryCode", "id_number",
				},
			},
		},
	},
}

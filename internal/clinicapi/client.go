package clinicapi

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"sort"
	"time"

	"github.com/farabiclinic/ai-receptionist/pkg/logging"
)

// Lookup type discriminators. The clinic backend multiplexes lookup-style
// calls over one endpoint keyed by Type.
const (
	lookupTypeClinics  = "1"
	lookupTypeDoctors  = "2"
	lookupTypePatients = "3"
)

var dateFormat = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// Options configures the clinic backend client.
type Options struct {
	BaseURL        string
	PatientBaseURL string
	ProviderID     string
	BranchID       string
	Org            string
	Authorization  string
	Timeout        time.Duration

	// The demo backend serves a certificate Go refuses by default.
	InsecureSkipVerify bool
}

// Client issues fixed-shape requests to the clinic REST backend. Every
// operation converts network, HTTP, and parse failures into its result
// type instead of returning an error.
type Client struct {
	httpClient     *http.Client
	baseURL        string
	patientBaseURL string
	providerID     string
	branchID       string
	org            string
	authorization  string
	logger         *logging.Logger
}

// NewClient creates a clinic backend client.
func NewClient(opts Options, logger *logging.Logger) *Client {
	if logger == nil {
		logger = logging.Default()
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	transport := http.DefaultTransport
	if opts.InsecureSkipVerify {
		transport = &http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
		}
	}

	return &Client{
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: transport,
		},
		baseURL:        opts.BaseURL,
		patientBaseURL: opts.PatientBaseURL,
		providerID:     opts.ProviderID,
		branchID:       opts.BranchID,
		org:            opts.Org,
		authorization:  opts.Authorization,
		logger:         logger,
	}
}

// GetClinics lists every clinic in the branch.
func (c *Client) GetClinics(ctx context.Context) ClinicsResult {
	status, body, err := c.post(ctx, c.baseURL+"/api/wa/Lookup", map[string]string{"Type": lookupTypeClinics}, true)
	if err != nil {
		return ClinicsResult{Error: fmt.Sprintf("Failed to get clinics: %v", err)}
	}

	var resp lookupResponse
	if jsonErr := json.Unmarshal(body, &resp); jsonErr != nil {
		c.logger.Error("get_clinics returned a non-JSON body", "status", status)
		return ClinicsResult{Error: "Invalid response from get_clinics"}
	}
	return ClinicsResult{Success: resp.Success, Clinics: resp.Clinics}
}

// GetDoctors lists the doctors of one clinic by clinic code.
func (c *Client) GetDoctors(ctx context.Context, clinicCode string) DoctorsResult {
	payload := map[string]string{"Type": lookupTypeDoctors, "Id": clinicCode}
	status, body, err := c.post(ctx, c.baseURL+"/api/wa/Lookup", payload, true)
	if err != nil {
		return DoctorsResult{Error: fmt.Sprintf("Failed to get doctors: %v", err)}
	}

	var resp lookupResponse
	if jsonErr := json.Unmarshal(body, &resp); jsonErr != nil {
		c.logger.Error("get_doctors returned a non-JSON body", "status", status, "clinic_code", clinicCode)
		return DoctorsResult{Error: "Invalid response from get_doctors"}
	}
	return DoctorsResult{Success: resp.Success, Doctors: resp.Doctors}
}

// CheckPatientExists looks a patient up by mobile number. A non-empty payload
// means the patient has an account.
func (c *Client) CheckPatientExists(ctx context.Context, mobileNumber string) PatientResult {
	payload := map[string]string{"Type": lookupTypePatients, "ContactMobile": mobileNumber}
	status, body, err := c.post(ctx, c.baseURL+"/api/wa/Lookup", payload, true)
	if err != nil {
		return PatientResult{
			Error:        fmt.Sprintf("Failed to check patient: %v", err),
			MobileNumber: mobileNumber,
		}
	}
	if status != http.StatusOK {
		return PatientResult{
			Error:        fmt.Sprintf("Failed to check patient. Status code: %d", status),
			Response:     string(body),
			MobileNumber: mobileNumber,
		}
	}

	var decoded any
	if jsonErr := json.Unmarshal(body, &decoded); jsonErr != nil {
		return PatientResult{
			Success:      true,
			Exists:       false,
			RawResponse:  string(body),
			MobileNumber: mobileNumber,
		}
	}
	return PatientResult{
		Success:      true,
		Exists:       nonEmptyJSON(decoded),
		PatientData:  json.RawMessage(body),
		MobileNumber: mobileNumber,
	}
}

// GetPatientAppointments returns the upcoming appointments carried on the
// patient lookup payload, or a not-found record when no account exists.
func (c *Client) GetPatientAppointments(ctx context.Context, mobileNumber string) AppointmentsResult {
	check := c.CheckPatientExists(ctx, mobileNumber)
	if !check.Success {
		return AppointmentsResult{
			Error:        check.Error,
			MobileNumber: mobileNumber,
		}
	}
	if !check.Exists {
		return AppointmentsResult{
			Success:      true,
			Exists:       false,
			Message:      "Patient not found",
			Appointments: json.RawMessage("[]"),
			MobileNumber: mobileNumber,
		}
	}
	return AppointmentsResult{
		Success:      true,
		Exists:       true,
		Appointments: upcomingAppointments(check.PatientData),
		PatientData:  check.PatientData,
		MobileNumber: mobileNumber,
	}
}

// CheckDoctorAvailability reports the open slots for a doctor on a date
// (today when empty), or the nearest alternative dates when the requested
// day is fully booked.
func (c *Client) CheckDoctorAvailability(ctx context.Context, doctorCode, date string) AvailabilityResult {
	if date == "" {
		date = time.Now().Format("2006-01-02")
	}
	if !dateFormat.MatchString(date) {
		return AvailabilityResult{
			Error: fmt.Sprintf("Invalid date format: %s. Please use YYYY-MM-DD format.", date),
		}
	}

	payload := map[string]any{
		"StartDate":   date,
		"DoctorCode":  doctorCode,
		"IS_TeleMed":  false,
		"PatientCode": "",
		"Lang":        "",
	}
	_, body, err := c.post(ctx, c.baseURL+"/api/Appointment/GetPatientAppointments", payload, true)
	if err != nil {
		return AvailabilityResult{
			Error:      fmt.Sprintf("Failed to check availability: %v", err),
			Date:       date,
			DoctorCode: doctorCode,
		}
	}

	var resp availabilityResponse
	if jsonErr := json.Unmarshal(body, &resp); jsonErr != nil {
		return AvailabilityResult{
			Error:      fmt.Sprintf("Failed to check availability: %v", jsonErr),
			Date:       date,
			DoctorCode: doctorCode,
		}
	}

	var requested []json.RawMessage
	var requestedPeriods []string
	var alternatives []AlternativeDate

	for _, day := range resp.DoctorAppointments {
		var open []json.RawMessage
		var periods []string
		for _, raw := range day.Slots {
			var meta slotMeta
			if json.Unmarshal(raw, &meta) != nil {
				continue
			}
			if meta.IsReserved || meta.IsClosed || !meta.IsDoctorOpen {
				continue
			}
			open = append(open, raw)
			periods = append(periods, meta.Period)
		}
		if len(open) == 0 {
			continue
		}
		if day.Date == date {
			requested = append(requested, open...)
			requestedPeriods = append(requestedPeriods, periods...)
			continue
		}
		alternatives = append(alternatives, AlternativeDate{
			Date:           day.Date,
			AvailableSlots: len(open),
			Slots:          open,
		})
	}

	if len(requested) > 0 {
		slotsInfo := ""
		for i, period := range requestedPeriods {
			slotsInfo += fmt.Sprintf("%d. %s\n", i+1, period)
		}
		return AvailabilityResult{
			Available:      true,
			AvailableSlots: len(requested),
			Date:           date,
			DoctorCode:     doctorCode,
			Slots:          requested,
			SlotsInfo:      slotsInfo,
			Details:        fmt.Sprintf("Found %d available slots on %s", len(requested), date),
			Message:        fmt.Sprintf("Doctor is available on %s with %d slots:\n%s", date, len(requested), slotsInfo),
		}
	}

	sort.Slice(alternatives, func(i, j int) bool {
		return alternatives[i].Date < alternatives[j].Date
	})

	altInfo := ""
	if len(alternatives) > 0 {
		altInfo = "\nAlternative dates with availability:\n"
		for _, alt := range alternatives {
			altInfo += fmt.Sprintf("- %s (%d slots available)\n", alt.Date, alt.AvailableSlots)
		}
	}
	return AvailabilityResult{
		Available:        false,
		AvailableSlots:   0,
		Date:             date,
		DoctorCode:       doctorCode,
		AlternativeDates: alternatives,
		Details:          fmt.Sprintf("No available slots found on %s", date),
		Message:          fmt.Sprintf("No available appointments found on %s.%s", date, altInfo),
	}
}

// BookAppointment inserts an appointment with the given details.
func (c *Client) BookAppointment(ctx context.Context, req BookingRequest) BookingResult {
	status, body, err := c.post(ctx, c.baseURL+"/api/Appointment/InsertAppointment", req, true)
	if err != nil {
		return BookingResult{
			Error:       fmt.Sprintf("Failed to book appointment: %v", err),
			BookingData: req,
		}
	}
	if status != http.StatusOK {
		return BookingResult{
			Error:       fmt.Sprintf("Failed to book appointment. Status code: %d", status),
			Response:    string(body),
			BookingData: req,
		}
	}

	result := BookingResult{
		Success:     true,
		Message:     "Appointment booked successfully",
		BookingData: req,
	}
	if json.Valid(body) {
		result.AppointmentDetails = json.RawMessage(body)
	} else {
		result.RawResponse = string(body)
	}
	return result
}

// CancelAppointment cancels an appointment by id. The cancellation endpoint
// takes the shared header set without org; the upstream contract is asymmetric
// here on purpose.
func (c *Client) CancelAppointment(ctx context.Context, appointmentID string) CancellationResult {
	payload := map[string]string{"Appo_ID": appointmentID}
	status, body, err := c.post(ctx, c.baseURL+"/api/Appointment/CancelAppointment", payload, false)
	if err != nil {
		return CancellationResult{
			Error:         fmt.Sprintf("Failed to cancel appointment: %v", err),
			AppointmentID: appointmentID,
		}
	}
	if status != http.StatusOK {
		return CancellationResult{
			Error:         fmt.Sprintf("Failed to cancel appointment. Status code: %d", status),
			Response:      string(body),
			AppointmentID: appointmentID,
		}
	}

	result := CancellationResult{
		Success:       true,
		Message:       "Appointment cancelled successfully",
		AppointmentID: appointmentID,
	}
	if json.Valid(body) {
		result.CancellationDetails = json.RawMessage(body)
	} else {
		result.RawResponse = string(body)
	}
	return result
}

// RegisterPatient creates a new patient account.
func (c *Client) RegisterPatient(ctx context.Context, req RegistrationRequest) RegistrationResult {
	status, body, err := c.post(ctx, c.patientBaseURL+"/api/wa/patient", req, true)
	if err != nil {
		return RegistrationResult{
			Error:            fmt.Sprintf("Failed to register patient: %v", err),
			RegistrationData: req,
		}
	}
	if status != http.StatusOK {
		return RegistrationResult{
			Error:            fmt.Sprintf("Failed to register patient. Status code: %d", status),
			Response:         string(body),
			RegistrationData: req,
		}
	}

	result := RegistrationResult{
		Success:          true,
		Message:          "Patient registered successfully",
		RegistrationData: req,
	}
	if json.Valid(body) {
		result.PatientDetails = json.RawMessage(body)
	} else {
		result.RawResponse = string(body)
	}
	return result
}

// post issues one backend call and returns the status and body. withOrg
// controls whether the org header is attached.
func (c *Client) post(ctx context.Context, url string, payload any, withOrg bool) (int, []byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return 0, nil, fmt.Errorf("clinicapi: failed to encode payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return 0, nil, fmt.Errorf("clinicapi: failed to build request: %w", err)
	}
	req.Header.Set("ProviderId", c.providerID)
	req.Header.Set("BranchId", c.branchID)
	if withOrg {
		req.Header.Set("org", c.org)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", c.authorization)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("clinicapi: request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("clinicapi: failed to read response body: %w", err)
	}
	return resp.StatusCode, body, nil
}

// nonEmptyJSON reports whether a decoded JSON value carries data, mirroring
// Python's truthiness on the lookup payload.
func nonEmptyJSON(v any) bool {
	switch value := v.(type) {
	case nil:
		return false
	case bool:
		return value
	case string:
		return value != ""
	case float64:
		return value != 0
	case []any:
		return len(value) > 0
	case map[string]any:
		return len(value) > 0
	default:
		return true
	}
}

// upcomingAppointments pulls the upcoming_appointments list out of a patient
// lookup payload, defaulting to an empty list when the backend omits it.
func upcomingAppointments(patientData json.RawMessage) json.RawMessage {
	var decoded map[string]json.RawMessage
	if err := json.Unmarshal(patientData, &decoded); err == nil {
		if appts, ok := decoded["upcoming_appointments"]; ok {
			return appts
		}
	}
	return json.RawMessage("[]")
}

package models

// ResponseBody is the JSON envelope shared by every /api/user endpoint.
type ResponseBody struct {
	Message string      `json:"message"`
	Success bool        `json:"success"`
	Data    interface{} `json:"data"`
}

// User API request bodies
type UserRegistrationBody struct {
	Email string `json:"email"`
}

type ConfirmRegistrationBody struct {
	ID    string `json:"id"`
	Token string `json:"token"`
}

type SetupRegistrationBody struct {
	ID       string `json:"id"`
	Token    string `json:"token"`
	Username string `json:"username"`
	Password string `json:"password"`
}

type PasswordLoginBody struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type OTPLoginBody struct {
	Email string `json:"email"`
}

type OTPLoginVerifyBody struct {
	Email string `json:"email"`
	OTP   string `json:"otp"`
}

type CreateDeviceBody struct {
	DeviceName string `json:"device_name"`
}

type CreateControllableBody struct {
	DeviceID             string `json:"device_id"`
	ControllableName     string `json:"controllable_name"`
	ControllableCategory string `json:"controllable_category"`
}

// Device API request bodies (plain-text responses)
type DeviceInitializationBody struct {
	DeviceKey  string `json:"device_key"`
	DevicePass string `json:"device_pass"`
}

type DeviceGetControllableBody struct {
	ControllableName string `json:"controllable_name"`
	DeviceKey        string `json:"device_key"`
	DevicePass       string `json:"device_pass"`
}

// Response data payloads
type RegistrationData struct {
	ID string `json:"id"`
}

type VerifyData struct {
	Token string `json:"token"`
	ID    string `json:"id"`
}

type UserData struct {
	UserData *User `json:"user_data"`
}

type DeviceData struct {
	DeviceData *Device `json:"device_data"`
}

type ControllableData struct {
	ControllableData *Controllable `json:"controllable_data"`
}

package tool

// Deps holds the collaborators the default handler set needs.
type Deps struct {
	Notifier Notifier
	OTP      *OTPService
	Users    *UserDirectory
}

// NewDefault wires every loan-flow tool into a registry. Missing deps get
// in-memory defaults so tests and local runs need no external services.
func NewDefault(deps Deps) *Registry {
	otp := deps.OTP
	if otp == nil {
		otp = NewOTPService(deps.Notifier)
	}
	users := deps.Users
	if users == nil {
		users = NewUserDirectory()
	}

	r := NewRegistry()
	r.Register("send_otp", otp.SendOTP)
	r.Register("verify_otp", otp.VerifyOTP)
	r.Register("request_pan_details", CapturePANDetails)
	r.Register("search_brands", SearchBrands)
	r.Register("search_models", SearchModels)
	r.Register("save_user", users.SaveUser)
	r.Register("fetch_offers", FetchOffers)
	return r
}

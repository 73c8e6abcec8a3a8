package models

type RegisterRequest struct {
	Email    string `json:"email" form:"email" binding:"required,email"`
	Password string `json:"password" form:"password" binding:"required,min=6"`
	FullName string `json:"full_name" form:"full_name" binding:"required,min=3"`
	Phone    string `json:"phone" form:"phone" binding:"omitempty"`
}

type LoginRequest struct {
	Email    string `json:"email" form:"email" binding:"required,email"`
	Password string `json:"password" form:"password" binding:"required"`
}

type TwoFactorVerifyRequest struct {
	Email string `json:"email" binding:"required,email"`
	Code  string `json:"code" binding:"required,len=6"`
}

type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=6"`
}

type UpdateProfileRequest struct {
	FullName string `json:"full_name" form:"full_name"`
	Phone    string `json:"phone" form:"phone"`
	Address  string `json:"address" form:"address"`
}

type CreateUserRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	Role     string `json:"role" binding:"required,oneof=customer admin"`
	FullName string `json:"full_name" binding:"required,min=3"`
	Phone    string `json:"phone"`
}

type UpdateUserRequest struct {
	Email    string `json:"email"`
	Role     string `json:"role"`
	FullName string `json:"full_name"`
	Phone    string `json:"phone"`
	Address  string `json:"address"`
}

type CreateProductRequest struct {
	Name        string  `json:"name" form:"name" binding:"required"`
	Description string  `json:"description" form:"description" binding:"required"`
	CategoryID  int     `json:"category_id" form:"category_id" binding:"required"`
	Price       float64 `json:"price" form:"price" binding:"required"`
	Stock       int     `json:"stock" form:"stock"`
	ImageURL    string  `json:"image_url" form:"image_url"`
}

type UpdateProductRequest struct {
	Name        string  `json:"name" form:"name"`
	Description string  `json:"description" form:"description"`
	CategoryID  int     `json:"category_id" form:"category_id"`
	Price       float64 `json:"price" form:"price"`
	Stock       int     `json:"stock" form:"stock"`
	ImageURL    string  `json:"image_url" form:"image_url"`
	IsActive    bool    `json:"is_active" form:"is_active"`
}

type AddToCartRequest struct {
	ProductID     int               `json:"product_id" binding:"required"`
	VariantID     *int              `json:"variant_id"`
	Quantity      int               `json:"quantity" binding:"required,min=1"`
	CustomOptions map[string]string `json:"custom_options"`
}

type UpdateCartItemRequest struct {
	Quantity int `json:"quantity"`
}

type ApplyCouponRequest struct {
	Code string `json:"code" binding:"required"`
}

type CheckoutRequest struct {
	BillingAddress  string `json:"billing_address" binding:"required"`
	ShippingAddress string `json:"shipping_address"`
	PaymentMethod   string `json:"payment_method" binding:"required"`
	ShippingMethod  string `json:"shipping_method" binding:"required"`
}

type UpdateOrderStatusRequest struct {
	Status    string `json:"status" binding:"required"`
	SendEmail *bool  `json:"send_email"`
}

type UpdatePaymentStatusRequest struct {
	Status        string  `json:"status" binding:"required"`
	TransactionID *string `json:"transaction_id"`
}

type CancelOrderRequest struct {
	Reason string `json:"reason"`
}

type TrackingNumberRequest struct {
	TrackingNumber string `json:"tracking_number" binding:"required"`
}

type RefundRequest struct {
	Amount *float64 `json:"amount"`
}

type UpdatePreferenceRequest struct {
	Type            string   `json:"type" binding:"required"`
	Enabled         *bool    `json:"enabled"`
	Channels        []string `json:"channels"`
	Frequency       string   `json:"frequency" binding:"omitempty,oneof=immediate digest"`
	QuietHoursStart *string  `json:"quiet_hours_start"`
	QuietHoursEnd   *string  `json:"quiet_hours_end"`
}

type CreateTemplateRequest struct {
	Name      string   `json:"name" binding:"required"`
	Locale    string   `json:"locale" binding:"required"`
	Subject   string   `json:"subject" binding:"required"`
	Preheader string   `json:"preheader"`
	HTMLBody  string   `json:"html_body" binding:"required"`
	TextBody  string   `json:"text_body"`
	Variables []string `json:"variables"`
}

type UpdateTemplateRequest struct {
	Subject   string   `json:"subject"`
	Preheader string   `json:"preheader"`
	HTMLBody  string   `json:"html_body"`
	TextBody  string   `json:"text_body"`
	Variables []string `json:"variables"`
	IsActive  *bool    `json:"is_active"`
}

type PreviewTemplateRequest struct {
	Variables map[string]string `json:"variables"`
}

type SetTranslationRequest struct {
	Locale string `json:"locale" binding:"required"`
	Key    string `json:"key" binding:"required"`
	Value  string `json:"value" binding:"required"`
}

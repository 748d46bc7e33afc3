package types

// RoleAdmin is the only principal role.
const RoleAdmin = "admin"

// LoginRequest is the body of POST /admin/auth/login.
type LoginRequest struct {
	Username string `json:"username" validate:"min=1,max=120"`
	Password string `json:"password" validate:"min=1,max=300"`
}

// AdminUser describes the authenticated principal.
type AdminUser struct {
	Username string `json:"username"`
	Role     string `json:"role"`
}

// LoginResponse is returned by login and refresh.
type LoginResponse struct {
	AccessToken string    `json:"accessToken"`
	ExpiresIn   int       `json:"expiresIn"`
	User        AdminUser `json:"user"`
}

// AssetUploadRequest is the body of POST /admin/assets/upload.
type AssetUploadRequest struct {
	Filename string `json:"filename" validate:"min=1,max=180"`
	DataURL  string `json:"dataUrl" validate:"min=30,max=10000000"`
}

// AssetUploadResponse describes a stored asset.
type AssetUploadResponse struct {
	URL     string `json:"url"`
	Size    int    `json:"size"`
	Storage string `json:"storage"`
	Type    string `json:"type"`
}

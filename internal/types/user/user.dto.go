package user

type UpdateProfileRequest struct {
	Username string `json:"username"`
}

type FriendCodeResponse struct {
	FriendCode string `json:"friendCode"`
}

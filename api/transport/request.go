package transport

type ProfileUpdateRequest struct {
	Username string `json:"username"`
}

type GoalRequest struct {
	Description string `json:"description"`
	Difficulty  string `json:"difficulty"`
}

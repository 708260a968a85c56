package extract

import "github.com/fwojciec/pulse"

// MockModules returns the fixed module list used when no generator is
// configured. Each call returns a fresh copy.
func MockModules() []pulse.Module {
	return []pulse.Module{
		{
			Name:        "Account Management",
			Description: "Features related to managing user accounts and profiles.",
			Submodules: map[string]string{
				"Login/Signup":     "Authentication processes for users.",
				"Profile Settings": "Updating user information and preferences.",
			},
			Confidence: confidence(0.98),
		},
		{
			Name:        "Content Creation",
			Description: "Tools for creating and publishing content.",
			Submodules: map[string]string{
				"Post Editor":  "Interface for writing and formatting posts.",
				"Media Upload": "Uploading images and videos.",
			},
			Confidence: confidence(0.92),
		},
	}
}

func confidence(f float64) *float64 {
	return &f
}

package prompts

// Default returns the built-in mode catalog.
func Default() *Catalog {
	c, err := NewCatalog(builtin)
	if err != nil {
		panic(err)
	}
	return c
}

var builtin = map[string]Mode{
	"image_edit": {
		Name:        "Image Edit",
		Description: "General purpose image editing and manipulation.",
		Templates: []PromptTemplate{
			{Name: "Add Object", Description: "Add a new object to the image.", Template: "Add a {object} to the scene."},
			{Name: "Remove Object", Description: "Remove an object from the image.", Template: "Remove the {object} from the image."},
			{Name: "Change Style", Description: "Change the artistic style of the image.", Template: "Change the style of the image to {style}."},
		},
	},
	"tech_infographics": {
		Name:        "Tech Infographic",
		Description: "Create clean, modern infographics about technology.",
		Templates: []PromptTemplate{
			{
				Name:        "Cloud Architecture",
				Description: "Generate a diagram for cloud services.",
				Template:    "Create a vector-style infographic diagram of a {cloud_provider} architecture for a {service_type}. Use a clean, minimalist style with icons.",
			},
		},
	},
	"android_ui_sim": {
		Name:        "Android UI Simulation",
		Description: "Generate mockups of Android application screens.",
		Templates: []PromptTemplate{
			{
				Name:        "Login Screen",
				Description: "Create a login screen.",
				Template:    "Generate a high-fidelity mockup of an Android app login screen for a {app_name} app. Include fields for email and password, a login button, and an option for social login. Use Material Design 3 principles.",
			},
		},
	},
	"windows_ui_sim": {
		Name:        "Windows UI Simulation",
		Description: "Generate mockups of Windows application screens.",
		Templates: []PromptTemplate{
			{
				Name:        "File Explorer",
				Description: "Create a File Explorer window.",
				Template:    "Generate a high-fidelity mockup of a Windows 11 File Explorer window showing files for a {project_name} project. Use the Fluent Design system.",
			},
		},
	},
	"app_process_sim": {
		Name:        "App Process Simulation",
		Description: "Illustrate a user flow or process.",
		Templates: []PromptTemplate{
			{
				Name:        "User Onboarding Flow",
				Description: "Create a sequence of screens for user onboarding.",
				Template:    "Create a 3-step user onboarding flow for a mobile app. Step 1: Welcome screen. Step 2: Profile setup. Step 3: Main dashboard tour. Use simple, clear UI elements.",
			},
		},
	},
}

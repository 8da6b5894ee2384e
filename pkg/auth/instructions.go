package auth

import (
	"fmt"
	"strings"
)

// ShowCredentialGuide prints how to obtain IGDB API credentials
func ShowCredentialGuide() {
	fmt.Println(strings.Repeat("=", 80))
	fmt.Println("IGDB API CREDENTIALS")
	fmt.Println(strings.Repeat("=", 80))
	fmt.Println()
	fmt.Println("IGDB authenticates through Twitch. You need a Client ID and a Client Secret.")
	fmt.Println()
	fmt.Println("STEP 1: Sign in at https://dev.twitch.tv/console (enable two-factor auth)")
	fmt.Println("STEP 2: Register a new application")
	fmt.Println("   - OAuth Redirect URL: http://localhost")
	fmt.Println("   - Category: Application Integration")
	fmt.Println("   - Client Type: Confidential")
	fmt.Println("STEP 3: Copy the Client ID and generate a New Secret")
	fmt.Println()
	fmt.Println("Then run:  igdbcovers auth login")
	fmt.Println("Or export: TWITCH_CLIENT_ID and TWITCH_CLIENT_SECRET")
	fmt.Println(strings.Repeat("=", 80))
}

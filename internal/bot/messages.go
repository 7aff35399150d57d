package bot

// =============================================================================
// General messages
// =============================================================================

const (
	MsgUnexpectedErr = `Unexpected error: %s`
	MsgStartPrompt   = "Send me a photo of something you want to sell and I'll tell you what it is and what it's worth."
	MsgSendPhoto     = "Send a photo to get a price estimate. /help lists the commands."
	MsgVersionInfo   = "Version: %s\nBuilt: %s"
)

// =============================================================================
// Recognition messages
// =============================================================================

const (
	MsgAnalyzingPhoto       = "Analyzing photo..."
	MsgImageDownloadFailed  = "Error: the photo could not be downloaded"
	MsgNotAnImage           = "That file is not an image. Send it as a photo or an image file."
	MsgRecognitionFailed    = "Image recognition failed, try again in a moment."
	MsgServiceNotConfigured = "Recognition is not configured on this bot."
	MsgNoPrices             = "No prices found for similar items."
	MsgSimilarItems         = "*Similar listings:*"
)

// =============================================================================
// History messages
// =============================================================================

const (
	MsgHistoryEmpty  = "No recognitions yet. Send a photo to get started."
	MsgHistoryHeader = "*Recent recognitions (%d total):*\n"
)

// =============================================================================
// Admin command messages
// =============================================================================

const (
	MsgAdminUsage           = "Usage:\n`/admin users add <user_id>`\n`/admin users remove <user_id>`\n`/admin users list`"
	MsgAdminUserAddUsage    = "Usage: `/admin users add <user_id>`"
	MsgAdminUserRemoveUsage = "Usage: `/admin users remove <user_id>`"
	MsgAdminUserInvalidID   = "Invalid user ID. Give a number."
	MsgAdminUserAdded       = "✅ User `%d` added."
	MsgAdminUserRemoved     = "🗑 User `%d` removed."
	MsgAdminNoUsers         = "No allowed users."
	MsgAdminAllowedUsers    = "*Allowed users:*\n"
)

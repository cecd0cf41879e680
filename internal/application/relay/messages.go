package relay

// User-facing texts sent by the bot.
const (
	greetingText = "👋 Welcome! Send your message below and our team will get back to you here."
	ackText      = "✅ Your message has been delivered."
)

const ticketCaptionFormat = "🎫 Ticket #%d"

package agents

// Kind identifies an AI call for logs, metrics and progress estimates
type Kind string

const (
	KindAnalyze          Kind = "analyze"
	KindClusterIdeas     Kind = "clusterIdeas"
	KindIdeaDetails      Kind = "ideaDetails"
	KindBlogPost         Kind = "blogPost"
	KindPressRelease     Kind = "pressRelease"
	KindSlideOutline     Kind = "slideOutline"
	KindFollowUpQuestion Kind = "followUpQuestion"
	KindChatReply        Kind = "chatReply"
)

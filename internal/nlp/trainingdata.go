package nlp

// DefaultTrainingSet is the built-in example corpus used when a training run
// is triggered without an explicit example set. A few labeled examples
// deliberately fall outside the rule table's reach, so the reported
// resubstitution accuracy reflects real rule coverage instead of a constant
// 100%.
func DefaultTrainingSet() []Example {
	return []Example{
		{"hello there", "greeting"},
		{"hi, anyone around?", "greeting"},
		{"hey bot", "greeting"},
		{"good morning team", "greeting"},
		{"good evening", "greeting"},
		{"i need help with my account", "help"},
		{"can you assist me", "help"},
		{"i have an issue with the app", "help"},
		{"there is a problem with my login", "help"},
		{"contact support please", "help"},
		{"thank you so much", "gratitude"},
		{"thanks a lot", "gratitude"},
		{"really appreciate it", "gratitude"},
		{"bye for now", "farewell"},
		{"goodbye", "farewell"},
		{"see you tomorrow", "farewell"},
		{"how much does the premium plan cost", "pricing"},
		{"what is the price of shipping insurance", "pricing"},
		{"pricing options please", "pricing"},
		{"when will my package arrive", "delivery"},
		{"track order 48213", "delivery"},
		{"shipping to another country", "delivery"},
		{"is delivery free", "delivery"},
		{"what are your opening hours", "general_inquiry"},
		{"do you have a store in berlin", "general_inquiry"},
		{"tell me about your company", "general_inquiry"},
		// Out-of-rule phrasings: the table cannot catch these, which keeps
		// the accuracy metric honest.
		{"my parcel has not shown up yet", "delivery"},
		{"what do you charge", "pricing"},
		{"cheers, that worked", "gratitude"},
		{"catch you later", "farewell"},
	}
}

package bank

import "github.com/Greeshmargowda/interview-agent/internal/storage/models"

// seedQuestions is the built-in question bank loaded into the vector store
// on first startup. Custom questions are added on top of these at runtime.
var seedQuestions = []models.BankQuestion{
	// Technical - software engineering
	{ID: "q_0", Question: "Explain the difference between SQL and NoSQL databases. When would you use each?", Phase: "technical", Role: "software_engineer", Difficulty: "medium"},
	{ID: "q_1", Question: "What is the time complexity of common sorting algorithms?", Phase: "technical", Role: "software_engineer", Difficulty: "medium"},
	{ID: "q_2", Question: "Describe your approach to writing unit tests and maintaining test coverage.", Phase: "technical", Role: "software_engineer", Difficulty: "medium"},
	{ID: "q_3", Question: "Explain REST API design principles and best practices.", Phase: "technical", Role: "software_engineer", Difficulty: "medium"},
	{ID: "q_4", Question: "What strategies do you use for debugging production issues?", Phase: "technical", Role: "software_engineer", Difficulty: "hard"},

	// Technical - data science
	{ID: "q_5", Question: "Explain the bias-variance tradeoff in machine learning.", Phase: "technical", Role: "data_scientist", Difficulty: "medium"},
	{ID: "q_6", Question: "How do you handle imbalanced datasets?", Phase: "technical", Role: "data_scientist", Difficulty: "medium"},
	{ID: "q_7", Question: "Describe your process for feature engineering.", Phase: "technical", Role: "data_scientist", Difficulty: "hard"},

	// Behavioral
	{ID: "q_8", Question: "Tell me about a time when you disagreed with a team decision. How did you handle it?", Phase: "behavioral", Role: "general", Difficulty: "medium"},
	{ID: "q_9", Question: "Describe a situation where you had to learn a new technology quickly.", Phase: "behavioral", Role: "general", Difficulty: "easy"},
	{ID: "q_10", Question: "How do you prioritize tasks when everything seems urgent?", Phase: "behavioral", Role: "general", Difficulty: "medium"},
	{ID: "q_11", Question: "Tell me about a time you failed. What did you learn?", Phase: "behavioral", Role: "general", Difficulty: "medium"},

	// Problem solving
	{ID: "q_12", Question: "How would you design a URL shortening service like bit.ly?", Phase: "problem_solving", Role: "software_engineer", Difficulty: "hard"},
	{ID: "q_13", Question: "Design a recommendation system for an e-commerce platform.", Phase: "problem_solving", Role: "data_scientist", Difficulty: "hard"},
	{ID: "q_14", Question: "How would you improve the user onboarding process for a mobile app?", Phase: "problem_solving", Role: "product_manager", Difficulty: "medium"},

	// Leadership and management
	{ID: "q_15", Question: "How do you handle underperforming team members?", Phase: "behavioral", Role: "manager", Difficulty: "hard"},
	{ID: "q_16", Question: "Describe your approach to giving constructive feedback.", Phase: "behavioral", Role: "manager", Difficulty: "medium"},
}

package question

// Index field names shared by the schema, the document writer and the hit parser.
const (
	FieldID                  = "question_id"
	FieldText                = "question_text"
	FieldAnswer              = "answer"
	FieldGrade               = "grade"
	FieldTopic               = "topic"
	FieldOperation           = "operation"
	FieldDifficulty          = "difficulty"
	FieldDifficultyScore     = "difficulty_score"
	FieldCategory            = "category"
	FieldCurriculumStrand    = "curriculum_strand"
	FieldGenerationTimestamp = "generation_timestamp"
)

// KeywordFields are the exact-match metadata fields.
var KeywordFields = []string{
	FieldGrade, FieldTopic, FieldOperation, FieldDifficulty, FieldCategory, FieldCurriculumStrand,
}

package repository

import "github.com/Ad0t/PMIS-Allocation/internal/domain/model"

// SampleCandidates returns the demo applicant pool.
func SampleCandidates() []model.Candidate {
	return []model.Candidate{
		{ID: "1", Name: "Priya Sharma", Education: "B.Tech Computer Science", Skills: []string{"React", "Node.js", "TypeScript"}, Location: "Delhi", Applications: 3, InternshipIDs: []string{"1", "3", "5"}, Projects: "E-commerce Website"},
		{ID: "2", Name: "Rahul Kumar", Education: "MBA Finance", Skills: []string{"Excel", "Financial Analysis", "SQL"}, Location: "Mumbai", Applications: 2, InternshipIDs: []string{"2"}, Projects: "Market Analysis Report"},
		{ID: "3", Name: "Anita Singh", Education: "B.Com Marketing", Skills: []string{"Digital Marketing", "SEO", "Content Writing"}, Location: "Bangalore", Applications: 4, InternshipIDs: []string{"3"}, Projects: "SEO Campaign for a local business"},
		{ID: "4", Name: "Suresh Gupta", Education: "B.Tech ECE", Skills: []string{"Python", "AWS", "Docker", "Kubernetes"}, Location: "Noida", Applications: 1, InternshipIDs: []string{"5"}, Projects: "CI/CD Pipeline setup"},
		{ID: "5", Name: "Deepika Verma", Education: "MBA HR", Skills: []string{"Recruitment", "Employee Engagement"}, Location: "Pune", Applications: 2, InternshipIDs: []string{"4"}, Projects: "HR Policy Review"},
		{ID: "6", Name: "Arjun Mehta", Education: "B.Sc Statistics", Skills: []string{"Python", "Pandas", "Tableau"}, Location: "Mumbai", Applications: 1, InternshipIDs: []string{"2"}, Projects: "Sales Dashboard"},
		{ID: "7", Name: "Vikram Rathod", Education: "B.Tech IT", Skills: []string{"Java", "Spring Boot", "MySQL"}, Location: "Delhi", Applications: 1, InternshipIDs: []string{"1"}, Projects: "Library Management System"},
	}
}

// SampleInternships returns the demo postings the sample candidates applied to.
func SampleInternships() []model.Internship {
	return []model.Internship{
		{ID: "1", Title: "full stack web developer", Company: "tech mahindra", RequiredSkills: []string{"React", "Node.js", "TypeScript", "Java"}, EducationKeywords: []string{"B.Tech", "Computer"}, Location: "Delhi", Capacity: 2, State: model.InternshipActive},
		{ID: "2", Title: "financial data analyst", Company: "hdfc bank", RequiredSkills: []string{"Excel", "SQL", "Python", "Financial Analysis"}, EducationKeywords: []string{"Finance", "Statistics"}, Location: "Mumbai", Capacity: 1, State: model.InternshipActive},
		{ID: "3", Title: "digital marketing associate", Company: "reliance retail", RequiredSkills: []string{"Digital Marketing", "SEO", "Content Writing"}, EducationKeywords: []string{"Marketing"}, Location: "Bangalore", Capacity: 2, State: model.InternshipActive},
		{ID: "4", Title: "human resources intern", Company: "infosys", RequiredSkills: []string{"Recruitment", "Employee Engagement", "Communication"}, EducationKeywords: []string{"HR", "MBA"}, Location: "Pune", Capacity: 1, State: model.InternshipActive},
		{ID: "5", Title: "cloud devops intern", Company: "wipro", RequiredSkills: []string{"Python", "AWS", "Docker"}, EducationKeywords: []string{"B.Tech", "pipeline"}, Location: "Noida", Capacity: 1, State: model.InternshipActive},
		{ID: "6", Title: "data science intern", Company: "tata consultancy services", RequiredSkills: []string{"Python", "Pandas", "Machine Learning"}, EducationKeywords: []string{"Statistics"}, Location: "Hyderabad", Capacity: 2, State: model.InternshipClosed},
	}
}

// Package employee keeps the HR records behind the Employees and
// Candidates sections: employees entered by hand or hired from the
// candidate pipeline, and candidates moving through its stages.
package employee
